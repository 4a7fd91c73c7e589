package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// State 描述 destination/<owner>/<name> 目录的状态。
type State int

const (
	// StateCloned 表示目录中有 .git。
	StateCloned State = iota
	// StateEmpty 表示目录存在但为空，下次运行会重新克隆。
	StateEmpty
	// StateForeign 表示目录非空但没有 .git，克隆时会被当作已存在而跳过。
	StateForeign
)

func (s State) String() string {
	switch s {
	case StateCloned:
		return "cloned"
	case StateEmpty:
		return "empty"
	case StateForeign:
		return "not a git repository"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LocalClone 是 destination 下的一个仓库目录。
type LocalClone struct {
	FullName string
	Path     string
	State    State
}

// ScanClones 按 <owner>/<name> 两层布局扫描 root，返回按 FullName 排序的结果。
// 跳过隐藏目录和符号链接；root 下的普通文件被忽略。
func ScanClones(root string) ([]LocalClone, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	owners, err := listDirs(root)
	if err != nil {
		return nil, err
	}

	clones := make([]LocalClone, 0)
	for _, owner := range owners {
		ownerPath := filepath.Join(root, owner)
		names, err := listDirs(ownerPath)
		if err != nil {
			return nil, err
		}

		for _, name := range names {
			path := filepath.Join(ownerPath, name)
			state, err := inspect(path)
			if err != nil {
				return nil, err
			}
			clones = append(clones, LocalClone{
				FullName: owner + "/" + name,
				Path:     path,
				State:    state,
			})
		}
	}

	sort.Slice(clones, func(i, j int) bool { return clones[i].FullName < clones[j].FullName })
	return clones, nil
}

// listDirs 返回 dir 下的子目录名，忽略无权限读取的目录。
func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		name := entry.Name()
		if name == "" || name[0] == '.' {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func inspect(path string) (State, error) {
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return StateCloned, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return StateForeign, err
	}
	if len(entries) == 0 {
		return StateEmpty, nil
	}
	return StateForeign, nil
}
