package service

import (
	"log/slog"

	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
)

const (
	OwnerRoleName  = "Owner"
	MemberRoleName = "member"
)

// MemberService keeps the channel membership ledger. Every membership owns
// its own role row.
type MemberService struct {
	store store.Store
}

// AddMember links the user to the channel under roleID. It does not check
// for an existing membership.
func (s *MemberService) AddMember(channelID, userID, roleID int64) (*models.Member, error) {
	member := &models.Member{ChannelID: channelID, UserID: userID, RoleID: roleID}
	if err := s.store.CreateMember(member); err != nil {
		return nil, storeError(err, "add user %d to channel %d", userID, channelID)
	}
	return member, nil
}

// AddOwner binds a channel's creator with a fresh owner role.
func (s *MemberService) AddOwner(channelID, userID int64) (*models.Member, error) {
	return s.addWithRole(channelID, userID, models.Role{Name: OwnerRoleName, IsAdmin: true, IsCreator: true})
}

// AddParticipant binds a joining user with a fresh plain member role.
func (s *MemberService) AddParticipant(channelID, userID int64) (*models.Member, error) {
	return s.addWithRole(channelID, userID, models.Role{Name: MemberRoleName})
}

func (s *MemberService) addWithRole(channelID, userID int64, role models.Role) (*models.Member, error) {
	var member *models.Member
	err := s.store.WithTx(func(tx store.Store) error {
		ledger := &MemberService{store: tx}
		created, err := ledger.CreateRole(role.Name, role.IsAdmin, role.IsCreator)
		if err != nil {
			return err
		}
		member, err = ledger.AddMember(channelID, userID, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("service: Member added", "channel_id", channelID, "user_id", userID, "role", role.Name)
	return member, nil
}

func (s *MemberService) GetByUserAndChannel(userID, channelID int64) (*models.Member, error) {
	member, err := s.store.GetMemberByUserAndChannel(userID, channelID)
	if err != nil {
		return nil, storeError(err, "membership of user %d in channel %d", userID, channelID)
	}
	return member, nil
}

func (s *MemberService) ListByUser(userID int64) ([]models.Member, error) {
	members, err := s.store.GetMembersByUser(userID)
	if err != nil {
		return nil, storeError(err, "list memberships of user %d", userID)
	}
	return members, nil
}

func (s *MemberService) ListByChannel(channelID int64) ([]models.Member, error) {
	members, err := s.store.GetMembersByChannel(channelID)
	if err != nil {
		return nil, storeError(err, "list members of channel %d", channelID)
	}
	return members, nil
}

// ReassignRole points the member at roleID. The previous role row is left
// for the caller to delete.
func (s *MemberService) ReassignRole(memberID, roleID int64) error {
	if err := s.store.UpdateMemberRole(memberID, roleID); err != nil {
		return storeError(err, "reassign role of member %d", memberID)
	}
	return nil
}

// RemoveMember deletes the member row only.
func (s *MemberService) RemoveMember(id int64) error {
	if err := s.store.DeleteMember(id); err != nil {
		return storeError(err, "remove member %d", id)
	}
	return nil
}

// Remove deletes the member's role and then the member.
func (s *MemberService) Remove(member *models.Member) error {
	err := s.store.WithTx(func(tx store.Store) error {
		ledger := &MemberService{store: tx}
		if err := ledger.DeleteRole(member.RoleID); err != nil {
			return err
		}
		return ledger.RemoveMember(member.ID)
	})
	if err != nil {
		return err
	}
	slog.Info("service: Member removed", "channel_id", member.ChannelID, "user_id", member.UserID)
	return nil
}

func (s *MemberService) CreateRole(name string, isAdmin, isCreator bool) (*models.Role, error) {
	role := &models.Role{Name: name, IsAdmin: isAdmin, IsCreator: isCreator}
	if err := s.store.CreateRole(role); err != nil {
		return nil, storeError(err, "create role %q", name)
	}
	return role, nil
}

func (s *MemberService) GetRole(id int64) (*models.Role, error) {
	role, err := s.store.GetRoleByID(id)
	if err != nil {
		return nil, storeError(err, "role %d", id)
	}
	return role, nil
}

func (s *MemberService) DeleteRole(id int64) error {
	if err := s.store.DeleteRole(id); err != nil {
		return storeError(err, "delete role %d", id)
	}
	return nil
}
