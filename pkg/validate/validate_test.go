package validate

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
	Website  string `json:"website" binding:"omitempty,url"`
}

type pageQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
}

func TestDetails(t *testing.T) {
	Register()

	req := signupRequest{Name: "a", Email: "not-an-email", Role: "ROOT", Website: "nope"}
	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	details := Details(err)
	assert.Equal(t, map[string]string{
		"name":     "长度不能小于2",
		"email":    "必须是有效的邮箱地址",
		"password": "不能为空",
		"role":     "必须是[USER ADMIN]中的一个",
		"website":  "必须是有效的网址",
	}, details)
}

func TestDetailsUsesFormTag(t *testing.T) {
	Register()

	err := binding.Validator.ValidateStruct(&pageQuery{Page: -1})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"page": "不能小于1"}, Details(err))
}

func TestDetailsUnmarshalTypeError(t *testing.T) {
	var req signupRequest
	err := json.Unmarshal([]byte(`{"name": 12}`), &req)
	require.Error(t, err)

	details := Details(err)
	assert.Contains(t, details, "name")
}

func TestDetailsUnknownError(t *testing.T) {
	var req signupRequest
	err := json.Unmarshal([]byte(`{bad json`), &req)
	require.Error(t, err)
	assert.Nil(t, Details(err))
}
