package handlers

import (
	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/pkg/dto"
)

func userResponse(u *models.User, p *models.Profile) dto.UserResponse {
	resp := dto.UserResponse{ID: u.ID, Email: u.Email, Provider: u.Provider}
	if p != nil {
		pr := profileResponse(p)
		resp.Profile = &pr
	}
	return resp
}

func profileResponse(p *models.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName,
		UpdatedAt:   p.UpdatedAt,
	}
}

func familyResponse(f *models.Family) dto.FamilyResponse {
	return dto.FamilyResponse{ID: f.ID, CreatedBy: f.CreatedBy, CreatedAt: f.CreatedAt}
}

func memberResponses(members []models.FamilyMember) []dto.FamilyMemberResponse {
	out := make([]dto.FamilyMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.FamilyMemberResponse{
			UserID:      m.UserID,
			Role:        m.Role,
			Email:       m.Email,
			DisplayName: m.DisplayName,
			JoinedAt:    m.CreatedAt,
		})
	}
	return out
}

func inviteResponse(i *models.FamilyInvite) dto.InviteResponse {
	return dto.InviteResponse{
		ID:        i.ID,
		Email:     i.Email,
		Status:    i.Status,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

func inviteResponses(invites []models.FamilyInvite) []dto.InviteResponse {
	out := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		out = append(out, inviteResponse(&invites[i]))
	}
	return out
}

func requestResponse(r *models.Request) dto.RequestResponse {
	resp := dto.RequestResponse{
		ID:          r.ID,
		FamilyID:    r.FamilyID,
		RequestedBy: r.RequestedBy,
		Type:        r.Type,
		Details:     r.Details,
		Status:      string(r.Status),
		StartDate:   r.StartDate.Format(models.DateLayout),
		DecidedBy:   r.DecidedBy,
		DecidedAt:   r.DecidedAt,
		CreatedAt:   r.CreatedAt,
	}
	if r.EndDate != nil {
		end := r.EndDate.Format(models.DateLayout)
		resp.EndDate = &end
	}
	return resp
}

func requestResponses(reqs []models.Request) []dto.RequestResponse {
	out := make([]dto.RequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, requestResponse(&reqs[i]))
	}
	return out
}

func messageResponse(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        m.ID,
		RequestID: m.RequestID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func messageResponses(msgs []models.Message) []dto.MessageResponse {
	out := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageResponse(&msgs[i]))
	}
	return out
}
