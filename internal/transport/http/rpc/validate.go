package rpc

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 校验错误里用 json 字段名
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func validationMessage(ve validator.ValidationErrors) string {
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		s := fe.Field() + ": failed on '" + fe.Tag()
		if p := fe.Param(); p != "" {
			s += "=" + p
		}
		parts = append(parts, s+"'")
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
