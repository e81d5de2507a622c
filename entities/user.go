package entities

// User 对应持久层的用户记录（余额字段由对局收支修改）
type User struct {
	ID       int    `json:"id"`
	UserName string `json:"username"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Balance  int64  `json:"balance"`
	Role     int    `json:"role"`
}

// FullName 显示名：姓名为空时退回用户名
func (u User) FullName() string {
	full := u.Name
	if u.Surname != "" {
		if full != "" {
			full += " "
		}
		full += u.Surname
	}
	if full == "" {
		full = u.UserName
	}
	return full
}

// IsAdmin 管理员判定（Role == 1）
func (u User) IsAdmin() bool {
	return u.Role == 1
}
