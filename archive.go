package superopt

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	gorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is one archived Optimize result.
type RunRecord struct {
	ID           uint
	CreatedAt    time.Time
	Strategy     string
	Target       string
	InputLength  int
	ResultLength int
	Evaluated    int64
	ElapsedMS    int64
	Cancelled    bool
	Input        string
	Program      string
	Improvements []ImprovementRecord `gorm:"foreignKey:RunID"`
}

type ImprovementRecord struct {
	ID        uint
	RunID     uint `gorm:"index"`
	Length    int
	Strategy  string
	Worker    int
	Evaluated int64
	ElapsedMS int64
	Program   string
}

// Archive stores results in a SQLite database through gorm.
type Archive struct {
	Config *ArchiveConfig
	DB     *gorm.DB
}

func NewArchive(config *ArchiveConfig) (*Archive, error) {
	if config == nil {
		return nil, errors.New("archive config cannot be nil")
	}
	if len(config.Path) == 0 {
		return nil, errors.New("path to database must be defined")
	}
	if len(config.Name) == 0 {
		return nil, errors.New("name of database must be defined")
	}

	db, err := gorm.Open(sqlite.Open(config.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	db = db.Session(&gorm.Session{PrepareStmt: true, CreateBatchSize: 1000})

	a := &Archive{Config: config, DB: db}
	if err := a.DB.AutoMigrate(&RunRecord{}, &ImprovementRecord{}); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	return a, nil
}

// DSN joins Path and Name and appends the pragmas and driver options as a
// query string. A Path of ":memory:" opens an in-memory database.
func (c *ArchiveConfig) DSN() string {
	var dsn strings.Builder
	if c.Path == ":memory:" {
		dsn.WriteString("file:" + c.Name + "?mode=memory&cache=shared")
	} else {
		dsn.WriteString(filepath.Join(c.Path, c.Name))
	}

	params := make([]string, 0, len(c.SQLitePragmas)+len(c.SQLiteOptions))
	for _, prag := range c.SQLitePragmas {
		params = append(params, "_pragma="+prag)
	}
	params = append(params, c.SQLiteOptions...)
	if len(params) == 0 {
		return dsn.String()
	}

	if strings.Contains(dsn.String(), "?") {
		dsn.WriteRune('&')
	} else {
		dsn.WriteRune('?')
	}
	dsn.WriteString(strings.Join(params, "&"))
	return dsn.String()
}

// Record stores r and its improvements in one transaction and returns the
// run ID.
func (a *Archive) Record(r *Result) (uint, error) {
	if r == nil {
		return 0, errors.New("result cannot be nil")
	}

	run := RunRecord{
		Strategy:     r.Strategy.String(),
		Target:       r.Target.String(),
		InputLength:  len(r.Input),
		ResultLength: len(r.Program),
		Evaluated:    int64(r.Evaluated),
		ElapsedMS:    r.Elapsed.Milliseconds(),
		Cancelled:    r.Cancelled,
		Input:        r.Input.String(),
		Program:      r.Program.String(),
	}
	for _, imp := range r.Improvements {
		run.Improvements = append(run.Improvements, ImprovementRecord{
			Length:    imp.Length,
			Strategy:  imp.Strategy.String(),
			Worker:    imp.Worker,
			Evaluated: int64(imp.Evaluated),
			ElapsedMS: imp.Elapsed.Milliseconds(),
			Program:   imp.Program.String(),
		})
	}

	if result := a.DB.Create(&run); result.Error != nil {
		return 0, fmt.Errorf("failed to record run: %w", result.Error)
	}
	return run.ID, nil
}

// Recent returns up to limit runs, newest first, with their improvements.
func (a *Archive) Recent(limit int) ([]RunRecord, error) {
	var runs []RunRecord
	result := a.DB.Preload("Improvements").Order("id desc").Limit(limit).Find(&runs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load runs: %w", result.Error)
	}
	return runs, nil
}

func (a *Archive) Close() error {
	sqldb, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return sqldb.Close()
}
