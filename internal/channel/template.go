package channel

import (
	"regexp"

	"github.com/notify/scheduler/internal/biz/account"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// BuildVars 用户资料变量与任务内容合并，内容中的同名键优先
func BuildVars(user *account.UserProfile, content map[string]any) map[string]any {
	vars := map[string]any{}
	if user != nil {
		vars = map[string]any{
			"id":       user.ID,
			"userId":   user.ID,
			"username": user.Username,
			"phone":    user.Phone,
			"email":    user.Email,
		}
	}
	return lo.Assign(vars, content)
}

// Render replaces every {name} found in vars; unknown placeholders stay as written.
func Render(s string, vars map[string]any) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		v, ok := vars[m[1:len(m)-1]]
		if !ok {
			return m
		}
		return cast.ToString(v)
	})
}

// RenderValue applies Render to strings nested anywhere in maps and slices.
func RenderValue(v any, vars map[string]any) any {
	switch val := v.(type) {
	case string:
		return Render(val, vars)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = RenderValue(item, vars)
		}
		return out
	case []any:
		return lo.Map(val, func(item any, _ int) any {
			return RenderValue(item, vars)
		})
	default:
		return v
	}
}

func RenderHeaders(headers map[string]string, vars map[string]any) map[string]string {
	return lo.MapValues(headers, func(v string, _ string) string {
		return Render(v, vars)
	})
}
