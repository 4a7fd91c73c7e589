package repo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// cloneCountWarnThreshold 超过该数量时 doctor 提示后续运行会较慢。
const cloneCountWarnThreshold = 500

// CheckHead 检查克隆的 HEAD 是否指向一个可读取的提交。
// 空仓库（远端没有任何提交）也会被报告。
func CheckHead(repoPath string) error {
	r, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("cannot open repo: %w", err)
	}

	headRef, err := r.Head()
	if err != nil {
		return fmt.Errorf("cannot resolve HEAD: %w", err)
	}
	if headRef.Hash().IsZero() {
		return fmt.Errorf("HEAD has no commits")
	}
	if _, err := r.CommitObject(headRef.Hash()); err != nil {
		return fmt.Errorf("HEAD commit is unreachable: %w", err)
	}

	return nil
}

// CheckClones 对 ScanClones 的结果逐个检查，返回问题描述和预警。
func CheckClones(clones []LocalClone) (problems []string, warnings []string) {
	if len(clones) > cloneCountWarnThreshold {
		warnings = append(warnings, fmt.Sprintf("large number of clones (%d); each run lists and checks all of them", len(clones)))
	}

	for _, c := range clones {
		switch c.State {
		case StateEmpty:
			warnings = append(warnings, fmt.Sprintf("%s: empty directory, will be cloned on next run", c.FullName))
		case StateForeign:
			problems = append(problems, fmt.Sprintf("%s: %s, will always be skipped", c.FullName, c.State))
		case StateCloned:
			if err := CheckHead(c.Path); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", c.FullName, err))
			}
		}
	}
	return problems, warnings
}
