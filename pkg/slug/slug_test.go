package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"  --Go 1.22 Released--  ", "go-1-22-released"},
		{"Café Crème Brûlée", "cafe-creme-brulee"},
		{"already-a-slug", "already-a-slug"},
		{"Multiple   spaces___and***symbols", "multiple-spaces-and-symbols"},
		{"你好世界", ""},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMakeCollidingNames(t *testing.T) {
	t.Parallel()
	// 不同写法的名称会得到相同的slug，唯一性检查以slug为准
	assert.Equal(t, Make("Go Tips"), Make("go-tips"))
	assert.Equal(t, Make("Go Tips"), Make("GO  TIPS!"))
}
