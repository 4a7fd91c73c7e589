// Package repo 检查 destination 目录下已经存在的本地克隆。
//
// 主要功能：
//   - ScanClones: 按 <owner>/<name> 布局扫描克隆目录
//   - CheckClones: 为 doctor 命令报告损坏或无法克隆的目录
package repo
