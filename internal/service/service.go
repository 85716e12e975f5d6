package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/biometric"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/cache"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/jwt"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Profile    ProfileService
	Course     CourseService
	Schedule   ScheduleService
	Session    SessionService
	Attendance AttendanceService
	Stats      StatsService
	Dashboard  DashboardService
	Biometric  BiometricService
	Seed       SeedService
	Export     ExportService
}

// NewService 创建 Service 聚合
// rdb 可为 nil：此时统计缓存退回内存，Token 黑名单关闭
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	stats := NewStatsService(cfg, repo, newStatsCache(cfg, rdb, logger), logger)
	seed := NewSeedService(cfg, repo, stats, logger)
	session := NewSessionService(repo, stats, logger)

	var blacklist TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, seed, logger),
		Profile:    NewProfileService(repo, logger),
		Course:     NewCourseService(repo, logger),
		Schedule:   NewScheduleService(cfg, repo, logger),
		Session:    session,
		Attendance: NewAttendanceService(repo, stats, logger),
		Stats:      stats,
		Dashboard:  NewDashboardService(repo, stats, logger),
		Biometric:  NewBiometricService(repo, newScannerRegistry(cfg), session, logger),
		Seed:       seed,
		Export:     NewExportService(cfg, repo, logger),
	}
}

// newStatsCache 按配置选择缓存后端
func newStatsCache(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) *cache.Cache[dto.DashboardStats] {
	opts := []cache.Option{cache.WithName("stats"), cache.WithLogger(logger)}
	if cfg.Cache.StaleOnError {
		opts = append(opts, cache.WithStaleOnError())
	}
	if cfg.Cache.FetchTimeout > 0 {
		opts = append(opts, cache.WithFetchTimeout(cfg.Cache.FetchTimeout))
	}

	if cfg.Cache.Backend == "redis" && rdb != nil {
		// Redis 键保留更久，刷新失败时仍能取到旧值
		retention := cfg.Cache.StatsTTL * 20
		if retention < time.Hour {
			retention = time.Hour
		}
		store := cache.NewRedisStore[dto.DashboardStats](rdb, cfg.Cache.Prefix, retention)
		return cache.New[dto.DashboardStats](store, opts...)
	}
	if cfg.Cache.Backend == "redis" {
		logger.Warn("Redis 不可用，统计缓存退回内存")
	}
	return cache.New[dto.DashboardStats](cache.NewMemoryStore[dto.DashboardStats](), opts...)
}

// newScannerRegistry 构建模拟指纹扫描器
func newScannerRegistry(cfg *config.Config) *biometric.Registry {
	bc := cfg.Biometric
	seed := bc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := biometric.NewSimulator(biometric.Config{
		AcquireDelay:  bc.AcquireDelay,
		MatchDelay:    bc.MatchDelay,
		ScoreMin:      bc.ScoreMin,
		ScoreMax:      bc.ScoreMax,
		Probabilities: biometric.ProbabilityTable{
			biometric.CheckPatternMatch: bc.Probability.PatternMatch,
			biometric.CheckLiveness:     bc.Probability.Liveness,
			biometric.CheckTemperature:  bc.Probability.Temperature,
			biometric.CheckIdentity:     bc.Probability.Identity,
		},
	}, biometric.NewRandSampler(seed))
	return biometric.NewRegistry(sim, bc.ResetAfter)
}
