// Package validate 将 go-playground/validator 的校验错误转换为按字段组织的提示信息
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// Register 让gin默认校验器在错误中使用json/form标签名作为字段名
func Register() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(tagName)
		}
	})
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// 错误信息模板
var msgMap = map[string]string{
	"required": "不能为空",
	"email":    "必须是有效的邮箱地址",
	"url":      "必须是有效的网址",
	"oneof":    "必须是[%v]中的一个",
	"gt":       "必须大于%v",
	"gte":      "必须大于等于%v",
	"lt":       "必须小于%v",
	"lte":      "必须小于等于%v",
}

// Message 生成单个字段的错误信息
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		op := "小于"
		if fe.Tag() == "max" {
			op = "大于"
		}
		switch fe.Kind() {
		case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("长度不能%s%s", op, fe.Param())
		default:
			return fmt.Sprintf("不能%s%s", op, fe.Param())
		}
	}

	tmpl, ok := msgMap[fe.Tag()]
	if !ok {
		return "格式不正确"
	}
	if strings.Contains(tmpl, "%v") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}

// Details 将绑定错误转换为 字段 -> 错误信息，无法识别的错误返回nil
func Details(err error) map[string]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fieldPath(fe)] = Message(fe)
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: fmt.Sprintf("类型错误，应为%s", typeErr.Type.String())}
	}

	return nil
}

// fieldPath 去掉顶层结构体名，保留嵌套字段路径
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
