package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// DefaultEmailDomain 学校邮箱域名
const DefaultEmailDomain = "kku.edu.sa"

var universityIDPattern = regexp.MustCompile(`^44\d{7}$`)

// ValidateUniversityID 学号格式：44 开头共 9 位数字
func ValidateUniversityID(id string) bool {
	return universityIDPattern.MatchString(id)
}

// RequiresUniversityEmail 角色是否必须使用学校邮箱
func RequiresUniversityEmail(role string) bool {
	return role == model.RoleStudent || role == model.RoleInstructor
}

// Rules 注册与登录的输入规则
type Rules struct {
	domain string
}

// NewRules 创建规则；domain 为空时使用学校默认域名
func NewRules(domain string) Rules {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	return Rules{domain: strings.ToLower(domain)}
}

// CompleteEmail 输入不含 @ 且角色需要学校邮箱时补全域名。
// role 为空（登录）时按学校账号处理。
func (r Rules) CompleteEmail(input, role string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" || strings.Contains(s, "@") {
		return s
	}
	if role != "" && !RequiresUniversityEmail(role) {
		return s
	}
	return s + "@" + r.domain
}

// ValidateEmail 检查邮箱格式与角色对应的域名
func (r Rules) ValidateEmail(email, role string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return ErrInvalidEmail
	}
	if RequiresUniversityEmail(role) && email[at+1:] != r.domain {
		return ErrEmailDomain
	}
	return nil
}

// ValidatePassword 8-20 位，同时包含字母和数字
func ValidatePassword(pw string) error {
	if len(pw) < 8 || len(pw) > 20 {
		return ErrWeakPassword
	}
	var letter, digit bool
	for _, c := range pw {
		switch {
		case unicode.IsLetter(c):
			letter = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}
