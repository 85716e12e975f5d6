package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

func profileFixture() (*memStore, ProfileService) {
	store, _ := courseFixture()
	store.addProfile("admin-1", "admin@example.com", model.RoleAdmin)
	return store, NewProfileService(newMockRepository(store), nop)
}

func TestProfileList_FilterByRole(t *testing.T) {
	_, svc := profileFixture()

	list, total, err := svc.List(context.Background(), &dto.ProfileListRequest{Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("期望 2 名学生，实际 total=%d len=%d", total, len(list))
	}
	for _, p := range list {
		if p.Role != model.RoleStudent {
			t.Errorf("期望仅返回学生，实际=%s", p.Role)
		}
	}
}

func TestProfileGet_Access(t *testing.T) {
	_, svc := profileFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   Actor
		id      string
		wantErr error
	}{
		{"本人", studentActor, "s1", nil},
		{"督导查看他人", supervisorActor, "s1", nil},
		{"管理员查看他人", adminActor, "inst-1", nil},
		{"学生查看他人", studentActor, "s2", ErrForbidden},
		{"教师查看学生", instructorActor, "s1", ErrForbidden},
		{"档案不存在", adminActor, "ghost", ErrProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(ctx, tt.actor, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际=%v", tt.wantErr, err)
			}
		})
	}
}

func TestProfileUpdateRole(t *testing.T) {
	store, svc := profileFixture()
	ctx := context.Background()

	resp, err := svc.UpdateRole(ctx, adminActor, "s2", model.RoleSupervisor)
	if err != nil {
		t.Fatalf("修改角色失败: %v", err)
	}
	if resp.Role != model.RoleSupervisor {
		t.Errorf("期望角色为 supervisor，实际=%s", resp.Role)
	}
	if by := store.profiles["s2"].UpdatedBy; by == nil || *by != "admin-1" {
		t.Errorf("期望记录操作人 admin-1，实际=%v", by)
	}

	if _, err := svc.UpdateRole(ctx, adminActor, "admin-1", model.RoleStudent); !errors.Is(err, ErrCannotChangeOwnRole) {
		t.Errorf("期望 ErrCannotChangeOwnRole，实际=%v", err)
	}
	if _, err := svc.UpdateRole(ctx, adminActor, "ghost", model.RoleStudent); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("期望 ErrProfileNotFound，实际=%v", err)
	}
}
