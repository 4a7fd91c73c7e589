// Package progress 在终端上按组织显示克隆进度。
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Bar 为每个组织创建一个进度条。输出不是终端时只打印完成行。
type Bar struct {
	out         io.Writer
	interactive bool

	bar   *progressbar.ProgressBar
	total int
}

func New(out io.Writer) *Bar {
	return &Bar{out: out, interactive: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (b *Bar) Start(org string, total int) {
	b.total = total
	b.bar = nil
	if !b.interactive || total == 0 {
		return
	}

	b.bar = progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription(org),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
}

func (b *Bar) ReportProgress(current, total int) {
	if b.bar == nil {
		return
	}
	if total != b.total {
		b.bar.ChangeMax(total)
		b.total = total
	}
	_ = b.bar.Set(current)
}

func (b *Bar) Done(org string) {
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
	fmt.Fprintf(b.out, "%s: done (%d repositories)\n", org, b.total)
}
