package sqlstore

import (
	"github.com/pliu/messenger/internal/models"
)

func (s *SQLStore) CreateRole(role *models.Role) error {
	id, err := s.insert("INSERT INTO roles (name, is_admin, is_creator) VALUES (?, ?, ?)",
		role.Name, role.IsAdmin, role.IsCreator)
	if err != nil {
		return err
	}
	role.ID = id
	return nil
}

func (s *SQLStore) GetRoleByID(id int64) (*models.Role, error) {
	var role models.Role
	query := s.rebind("SELECT id, name, is_admin, is_creator FROM roles WHERE id = ?")
	if err := s.q.QueryRow(query, id).Scan(&role.ID, &role.Name, &role.IsAdmin, &role.IsCreator); err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (s *SQLStore) DeleteRole(id int64) error {
	return s.exec("DELETE FROM roles WHERE id = ?", id)
}

func (s *SQLStore) CreateMember(member *models.Member) error {
	id, err := s.insert("INSERT INTO members (channel_id, user_id, role_id) VALUES (?, ?, ?)",
		member.ChannelID, member.UserID, member.RoleID)
	if err != nil {
		return err
	}
	member.ID = id
	return nil
}

func (s *SQLStore) GetMemberByUserAndChannel(userID, channelID int64) (*models.Member, error) {
	var m models.Member
	query := s.rebind("SELECT id, channel_id, user_id, role_id FROM members WHERE user_id = ? AND channel_id = ? ORDER BY id LIMIT 1")
	if err := s.q.QueryRow(query, userID, channelID).Scan(&m.ID, &m.ChannelID, &m.UserID, &m.RoleID); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *SQLStore) GetMembersByUser(userID int64) ([]models.Member, error) {
	return s.listMembers("user_id", userID)
}

func (s *SQLStore) GetMembersByChannel(channelID int64) ([]models.Member, error) {
	return s.listMembers("channel_id", channelID)
}

func (s *SQLStore) listMembers(where string, arg int64) ([]models.Member, error) {
	query := s.rebind("SELECT id, channel_id, user_id, role_id FROM members WHERE " + where + " = ? ORDER BY id")
	rows, err := s.q.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.UserID, &m.RoleID); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *SQLStore) UpdateMemberRole(memberID, roleID int64) error {
	return s.execAffecting("UPDATE members SET role_id = ? WHERE id = ?", roleID, memberID)
}

func (s *SQLStore) DeleteMember(id int64) error {
	return s.exec("DELETE FROM members WHERE id = ?", id)
}
