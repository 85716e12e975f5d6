package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
)

// Register 向 gin 的绑定校验器注册自定义标签
//   - kku_university_id: 学号格式 44xxxxxxx
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("kku_university_id", universityID)
}

func universityID(fl validator.FieldLevel) bool {
	return service.ValidateUniversityID(fl.Field().String())
}
