package storage

import (
	"path/filepath"
	"strings"
)

// IsValidStoragePath 校验存储路径是否合法
// 只允许 [A-Za-z0-9_./-]，拒绝绝对路径和任何包含 ".." 的路径
func IsValidStoragePath(path string) bool {
	if path == "" {
		return false
	}

	// 不允许绝对路径
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}

	// 防止目录遍历
	if strings.Contains(path, "..") {
		return false
	}

	// 只允许安全字符
	for _, r := range path {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}

	return true
}

// PublicObjectPath 返回对象在公开存储源下的路径
func PublicObjectPath(bucket, key string) string {
	return "/storage/v1/object/public/" + bucket + "/" + key
}
