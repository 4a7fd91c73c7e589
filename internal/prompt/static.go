package prompt

import (
	"fmt"
	"strings"
)

// Static 不做交互，直接返回 --org/--all 指定的组织。
// Orgs 中的顺序即处理顺序；名称按大小写不敏感匹配候选项。
type Static struct {
	Orgs []string
	All  bool
}

func (s Static) PromptSelection(choices []string) ([]string, error) {
	if s.All {
		return append([]string(nil), choices...), nil
	}

	byLower := make(map[string]string, len(choices))
	for _, c := range choices {
		byLower[strings.ToLower(c)] = c
	}

	out := make([]string, 0, len(s.Orgs))
	seen := make(map[string]struct{}, len(s.Orgs))
	for _, org := range s.Orgs {
		key := strings.ToLower(strings.TrimSpace(org))
		if key == "" {
			continue
		}
		choice, ok := byLower[key]
		if !ok {
			return nil, fmt.Errorf("organization %q is not visible to this token (available: %s)", org, strings.Join(choices, ", "))
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, choice)
	}
	return out, nil
}
