package user

import "strings"

// User 收银员/管理员账号
// 设计说明:
// 1. Password保存bcrypt哈希;旧库中的明文密码在首次登录成功后升级为哈希
// 2. Login唯一
type User struct {
	ID       uint
	Login    string
	Password string // bcrypt哈希值(旧数据可能为明文)
}

// NewUser 创建新用户(工厂方法)
// hashedPassword必须是bcrypt加密后的密码
func NewUser(login, hashedPassword string) *User {
	return &User{
		Login:    strings.TrimSpace(login),
		Password: hashedPassword,
	}
}

// HasLegacyPassword 密码是否仍是未加密的旧数据
// bcrypt哈希固定以"$2a$"/"$2b$"/"$2y$"开头
func (u *User) HasLegacyPassword() bool {
	return !strings.HasPrefix(u.Password, "$2")
}
