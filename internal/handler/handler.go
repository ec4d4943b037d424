// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/paiban/kebiao/pkg/errors"
)

// DefaultMaxBodySize 默认请求体上限
const DefaultMaxBodySize int64 = 10 << 20

// newValidate 请求体校验器，字段名使用 json 标签
func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON 解析并校验请求体
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBody int64, v *validator.Validate, dst interface{}) error {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.CodeInvalidInput, "请求体过大")
		}
		return errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败").WithDetails(err.Error())
	}

	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return errors.Wrap(err, errors.CodeInvalidInput, "请求校验失败")
		}
		out := &errors.ValidationErrors{}
		for _, fe := range verrs {
			out.Add(fieldPath(fe.Namespace()), fe.Tag())
		}
		return out.AsInvalidInput()
	}
	return nil
}

// fieldPath 去掉顶层结构体名和内嵌的 Input
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return strings.TrimPrefix(namespace, "Input.")
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, errors.GetHTTPStatus(err), errorBody(err))
}

// errorBody 错误响应体
func errorBody(err error) map[string]interface{} {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Wrap(err, errors.CodeInternal, "内部错误")
	}
	body := map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Details != "" {
		body["details"] = appErr.Details
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	return body
}
