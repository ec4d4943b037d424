package scheduler

import (
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/scheduler/solver"
)

// DefaultTimeout 默认搜索时限
const DefaultTimeout = 30 * time.Second

// Options 排课选项
type Options struct {
	// MaxNodes 最多尝试的放置次数
	MaxNodes int `mapstructure:"max_nodes" json:"max_nodes"`
	// Timeout 搜索时限，0 表示只受调用方上下文限制
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
	// BestEffort 无法排满时跳过受阻课程，结果中列出未完成课程
	BestEffort bool `mapstructure:"best_effort" json:"best_effort"`
	// PinTeacher 同一课程的所有节次由同一位教师授课
	PinTeacher bool `mapstructure:"pin_teacher" json:"pin_teacher"`
}

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	return Options{
		MaxNodes: solver.DefaultMaxNodes,
		Timeout:  DefaultTimeout,
	}
}

// DecodeOptions 将请求中的选项覆盖到 base 上
// 数字形式的 timeout 按秒解释，字符串形式按 time.ParseDuration 解析
func DecodeOptions(raw map[string]interface{}, base Options) (Options, error) {
	opts := base
	if len(raw) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return base, errors.Wrap(err, errors.CodeInternal, "创建选项解码器失败")
	}
	if err := decoder.Decode(raw); err != nil {
		return base, errors.Wrap(err, errors.CodeInvalidInput, "选项无效").WithDetails(err.Error())
	}
	if opts.MaxNodes < 0 || opts.Timeout < 0 {
		return base, errors.InvalidInput("options", "max_nodes 和 timeout 不能为负数")
	}
	return opts, nil
}

// secondsToDurationHook 数字按秒转换为 time.Duration
func secondsToDurationHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	}
	return data, nil
}
