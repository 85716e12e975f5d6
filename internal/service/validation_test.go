package service

import (
	"errors"
	"strings"
	"testing"
)

func TestCompleteEmail(t *testing.T) {
	r := NewRules("kku.edu.sa")
	cases := []struct {
		input, role, want string
	}{
		{"student", "student", "student@kku.edu.sa"},
		{" Ali.Ahmed ", "instructor", "ali.ahmed@kku.edu.sa"},
		{"ahmed", "", "ahmed@kku.edu.sa"},
		{"boss", "admin", "boss"},
		{"someone@gmail.com", "student", "someone@gmail.com"},
		{"", "student", ""},
	}
	for _, tc := range cases {
		if got := r.CompleteEmail(tc.input, tc.role); got != tc.want {
			t.Errorf("CompleteEmail(%q, %q) 期望 %q，实际=%q", tc.input, tc.role, tc.want, got)
		}
	}
}

func TestNewRules_DefaultDomain(t *testing.T) {
	if got := NewRules("").CompleteEmail("x", "student"); got != "x@"+DefaultEmailDomain {
		t.Errorf("空域名应回落到默认域名，实际=%q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	r := NewRules("kku.edu.sa")
	if err := r.ValidateEmail("a@kku.edu.sa", "student"); err != nil {
		t.Errorf("学校邮箱应通过，实际=%v", err)
	}
	if err := r.ValidateEmail("a@gmail.com", "instructor"); !errors.Is(err, ErrEmailDomain) {
		t.Errorf("教师使用外部邮箱期望 ErrEmailDomain，实际=%v", err)
	}
	if err := r.ValidateEmail("a@gmail.com", "admin"); err != nil {
		t.Errorf("管理员不限域名，实际=%v", err)
	}
	for _, bad := range []string{"abc", "@kku.edu.sa", "abc@", "a b@kku.edu.sa"} {
		if err := r.ValidateEmail(bad, "student"); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("%q 期望 ErrInvalidEmail，实际=%v", bad, err)
		}
	}
}

func TestValidateUniversityID(t *testing.T) {
	valid := []string{"441234567", "440000000"}
	invalid := []string{"451234567", "44123456", "4412345678", "44123456a", ""}
	for _, id := range valid {
		if !ValidateUniversityID(id) {
			t.Errorf("%q 应为合法学号", id)
		}
	}
	for _, id := range invalid {
		if ValidateUniversityID(id) {
			t.Errorf("%q 不应为合法学号", id)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("abc12345"); err != nil {
		t.Errorf("合法密码不应报错，实际=%v", err)
	}
	for _, pw := range []string{"abcdefgh", "12345678", "ab1", strings.Repeat("a1", 11)} {
		if err := ValidatePassword(pw); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("%q 期望 ErrWeakPassword，实际=%v", pw, err)
		}
	}
}
