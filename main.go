// org-clone 列出 GitHub 上选定组织的全部仓库，并顺序克隆到本地目录。
package main

import (
	"org-clone/cmd"
)

// main 是程序的入口函数，负责启动 CLI 命令执行。
func main() {
	cmd.Execute()
}
