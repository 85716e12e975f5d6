package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/biometric"
)

func setupBiometric(sampler biometric.Sampler) (*memStore, BiometricService) {
	store, _ := courseFixture()
	store.addSession("sess-1", "c1", "ABC234", time.Now().Add(10*time.Minute), true)
	repo := newMockRepository(store)
	sessions := NewSessionService(repo, &mockStatsService{}, nop)
	sim := biometric.NewSimulator(biometric.Config{ScoreMin: 85, ScoreMax: 99}, sampler)
	return store, NewBiometricService(repo, biometric.NewRegistry(sim, time.Hour), sessions, nop)
}

func TestBiometricVerify_SuccessWithoutCheckIn(t *testing.T) {
	store, svc := setupBiometric(biometric.FixedSampler{MatchScore: 92.5})

	resp, err := svc.Verify(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("验证失败: %v", err)
	}
	if !resp.Success || resp.State != string(biometric.StateVerified) {
		t.Errorf("期望 verified，实际=%+v", resp)
	}
	if resp.MatchScore != 92.5 {
		t.Errorf("期望匹配分 92.5，实际=%v", resp.MatchScore)
	}
	if resp.Attendance != nil {
		t.Error("未带签到码时不应签到")
	}
	if len(store.verifications) != 1 || store.verifications[0].SessionID != nil {
		t.Errorf("应写入 1 条不含会话的验证记录，实际=%+v", store.verifications)
	}
}

func TestBiometricVerify_ChecksInWithCode(t *testing.T) {
	store, svc := setupBiometric(biometric.FixedSampler{})

	resp, err := svc.Verify(context.Background(), "s1", "abc234")
	if err != nil {
		t.Fatalf("验证签到失败: %v", err)
	}
	if resp.Attendance == nil || resp.Attendance.Method != model.MethodBiometric {
		t.Fatalf("期望以 biometric 方式签到，实际=%+v", resp.Attendance)
	}
	v := store.verifications[0]
	if v.SessionID == nil || *v.SessionID != "sess-1" {
		t.Errorf("验证记录应关联会话 sess-1，实际=%v", v.SessionID)
	}
}

func TestBiometricVerify_FailedCheckSkipsCheckIn(t *testing.T) {
	store, svc := setupBiometric(biometric.FixedSampler{
		Outcomes: map[biometric.Check]bool{biometric.CheckLiveness: false},
	})

	resp, err := svc.Verify(context.Background(), "s1", "ABC234")
	if err != nil {
		t.Fatalf("验证不应返回错误: %v", err)
	}
	if resp.Success || resp.FailedCheck != string(biometric.CheckLiveness) {
		t.Errorf("期望 liveness 失败，实际=%+v", resp)
	}
	if resp.Message == "" {
		t.Error("失败时应返回提示信息")
	}
	if resp.Attendance != nil || len(store.attendance) != 0 {
		t.Error("验证失败不应签到")
	}
	if store.verifications[0].FailedCheck == nil {
		t.Error("验证记录应保存失败项")
	}
}

func TestBiometricVerify_CheckInErrorPropagates(t *testing.T) {
	_, svc := setupBiometric(biometric.FixedSampler{})
	if _, err := svc.Verify(context.Background(), "s2", "ABC234"); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("未选课期望 ErrNotEnrolled，实际=%v", err)
	}
}

func TestBiometricStatus(t *testing.T) {
	_, svc := setupBiometric(biometric.FixedSampler{})
	ctx := context.Background()

	if st := svc.Status(ctx, "s1"); st.State != string(biometric.StateIdle) || st.Last != nil {
		t.Errorf("初始应为 idle 且无结果，实际=%+v", st)
	}
	if _, err := svc.Verify(ctx, "s1", ""); err != nil {
		t.Fatalf("验证失败: %v", err)
	}
	st := svc.Status(ctx, "s1")
	if st.State != string(biometric.StateVerified) || st.Last == nil || !st.Last.Success {
		t.Errorf("验证后应为 verified 并带结果，实际=%+v", st)
	}
	if other := svc.Status(ctx, "s2"); other.State != string(biometric.StateIdle) {
		t.Errorf("扫描器应按用户隔离，实际=%s", other.State)
	}
}
