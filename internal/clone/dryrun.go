package clone

import (
	"context"
	"fmt"
	"io"

	"org-clone/internal/github"
)

// DryRun 只报告将要发生的操作，不创建目录也不访问远端。
type DryRun struct {
	Out io.Writer
}

func (d DryRun) CloneOne(_ context.Context, repo github.Repository, root string) (Outcome, error) {
	target := TargetPath(root, repo.FullName)

	present, err := Present(target)
	if err != nil {
		return Failed, err
	}
	if present {
		fmt.Fprintf(d.Out, "skip   %s (%s exists)\n", repo.FullName, target)
		return Skipped, nil
	}

	fmt.Fprintf(d.Out, "clone  %s -> %s\n", repo.FullName, target)
	return Cloned, nil
}
