package handlers

import (
  "fmt"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
  "github.com/dentiqcloud/dentiq-backend/internal/services"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

type ClinicHandler struct {
  membershipService services.MembershipService
}

func NewClinicHandler(membershipService services.MembershipService) *ClinicHandler {
  return &ClinicHandler{membershipService: membershipService}
}

type addMemberRequest struct {
  UserID uuid.UUID `json:"user_id" binding:"required"`
  Role   string    `json:"role"`
}

// POST /api/clinic/members  (clinic scope from X-Clinic-ID header)
func (h *ClinicHandler) AddMember(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.ClinicID == uuid.Nil {
    RespondError(c, apierr.Fatal(fmt.Errorf("clinic scope missing from request context")))
    return
  }
  var req addMemberRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("invalid member payload: %w", err)))
    return
  }
  role := req.Role
  if role == "" {
    role = "doctor"
  }
  member, err := h.membershipService.AddMember(c.Request.Context(), nil, &types.ClinicMember{
    ID:       uuid.New(),
    ClinicID: rd.ClinicID,
    UserID:   req.UserID,
    Role:     role,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, member)
}

// DELETE /api/clinic/members/:userId  (clinic scope from X-Clinic-ID header)
func (h *ClinicHandler) RemoveMember(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.ClinicID == uuid.Nil {
    RespondError(c, apierr.Fatal(fmt.Errorf("clinic scope missing from request context")))
    return
  }
  userID, err := uuid.Parse(c.Param("userId"))
  if err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("malformed user id")))
    return
  }
  if err := h.membershipService.RemoveMember(c.Request.Context(), nil, rd.ClinicID, userID); err != nil {
    RespondError(c, err)
    return
  }
  RespondSuccess(c, "member removed")
}
