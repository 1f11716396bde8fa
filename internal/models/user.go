package models

type User struct {
	ID     ID         `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
