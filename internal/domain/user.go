package domain

// User - учётная запись. После создания не меняется.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
}

// UserPublic - публичное представление пользователя (без хэша пароля).
type UserPublic struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Public - урезанное представление для ответа клиенту.
func (u *User) Public() UserPublic {
	return UserPublic{ID: u.ID, Email: u.Email}
}
