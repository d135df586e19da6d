package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server    ServerConfig
		Database  DatabaseConfig
		Redis     RedisConfig
		Calendar  CalendarConfig
		Workload  WorkloadConfig
		Timetable TimetableConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		User          string
		Password      string
		Host          string
		Port          int
		Name          string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Address  string // locks are process-local when empty
		Password string
		DB       int
		LockTTL  time.Duration // lease, renewed while held; raised to 5s when lower
	}

	// CalendarConfig holds the month boundaries of the school year.
	// They are policy, so they are configurable rather than baked into SemesterOf.
	CalendarConfig struct {
		YearStartMonth      time.Month
		SecondSemesterMonth time.Month
	}

	WorkloadConfig struct {
		WeeklyLoad        int
		HomeroomReduction int
		DeptHeadReduction int
	}

	TimetableConfig struct {
		DaysPerWeek   int
		PeriodsPerDay int
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, strconv.Itoa(dbc.Port))
}

// NewConfig loads the configuration for the current ENV from the environment,
// after loading `config/.env.<env>` if it exists.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Ratiba")
	conf.SetDefault("build", "develop")
	conf.SetDefault("secretKey", "x8k2-ha)wnq$+19=pf&ulzb4(t!m)#*r7(#qe5^$kdew3zj")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.user", "ratiba")
	conf.SetDefault("database.password", "ratiba")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.name", "ratiba")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("redis.address", "")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)
	conf.SetDefault("redis.lockTTL", 30*time.Second)

	conf.SetDefault("calendar.yearStartMonth", int(time.August))
	conf.SetDefault("calendar.secondSemesterMonth", int(time.January))

	conf.SetDefault("workload.weeklyLoad", 17)
	conf.SetDefault("workload.homeroomReduction", 3)
	conf.SetDefault("workload.deptHeadReduction", 3)

	conf.SetDefault("timetable.daysPerWeek", 6)
	conf.SetDefault("timetable.periodsPerDay", 10)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			Address:            conf.GetString("server.address"),
			DebugHost:          conf.GetString("server.debugHost"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetInt("database.port"),
			Name:          conf.GetString("database.name"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Address:  conf.GetString("redis.address"),
			Password: conf.GetString("redis.password"),
			DB:       conf.GetInt("redis.db"),
			LockTTL:  conf.GetDuration("redis.lockTTL"),
		},
		Calendar: CalendarConfig{
			YearStartMonth:      time.Month(conf.GetInt("calendar.yearStartMonth")),
			SecondSemesterMonth: time.Month(conf.GetInt("calendar.secondSemesterMonth")),
		},
		Workload: WorkloadConfig{
			WeeklyLoad:        conf.GetInt("workload.weeklyLoad"),
			HomeroomReduction: conf.GetInt("workload.homeroomReduction"),
			DeptHeadReduction: conf.GetInt("workload.deptHeadReduction"),
		},
		Timetable: TimetableConfig{
			DaysPerWeek:   conf.GetInt("timetable.daysPerWeek"),
			PeriodsPerDay: conf.GetInt("timetable.periodsPerDay"),
		},
	}
}
