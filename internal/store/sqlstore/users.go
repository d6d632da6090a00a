package sqlstore

import (
	"database/sql"

	"github.com/pliu/messenger/internal/models"
)

const userColumns = "id, name, email, password, image"

func (s *SQLStore) CreateUser(user *models.User) error {
	id, err := s.insert("INSERT INTO users (name, email, password, image) VALUES (?, ?, ?, ?)",
		user.Name, user.Email, user.PasswordHash, user.Image)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (s *SQLStore) getUser(where string, arg any) (*models.User, error) {
	var user models.User
	query := s.rebind("SELECT " + userColumns + " FROM users WHERE " + where + " = ?")
	err := s.q.QueryRow(query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Image)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *SQLStore) GetUserByID(id int64) (*models.User, error) {
	return s.getUser("id", id)
}

func (s *SQLStore) GetUserByName(name string) (*models.User, error) {
	return s.getUser("name", name)
}

func (s *SQLStore) GetUserByEmail(email string) (*models.User, error) {
	return s.getUser("email", email)
}

func (s *SQLStore) ListUsers() ([]models.User, error) {
	rows, err := s.q.Query("SELECT " + userColumns + " FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

func (s *SQLStore) UpdateUser(user *models.User) error {
	return s.execAffecting("UPDATE users SET name = ?, email = ?, password = ?, image = ? WHERE id = ?",
		user.Name, user.Email, user.PasswordHash, user.Image, user.ID)
}

func (s *SQLStore) DeleteUser(id int64) error {
	return s.exec("DELETE FROM users WHERE id = ?", id)
}

func scanUsers(rows *sql.Rows) ([]models.User, error) {
	defer rows.Close()
	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Image); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
