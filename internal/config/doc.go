// Package config 提供 org-clone 的配置管理功能。
//
// 配置文件存储在 ~/.config/org-clone/config.yaml，使用 YAML 格式。
// 支持的配置项包括默认目标目录、克隆深度和默认组织列表；
// token 只从 --token、ORG_CLONE_TOKEN 或 GITHUB_TOKEN 读取。
package config
