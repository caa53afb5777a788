// Package db is the local store behind the dashboard: the divergence
// journal, cached trade/purchase lists and power history. The central
// backend stays the source of truth; caches are replaced wholesale from
// its responses.
package db

import (
	"database/sql"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

type Storage struct {
	db *gorm.DB
}

func NewStorage(dsn string, opts ...gorm.Option) (*Storage, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn: sqlDB,
	}), opts...)
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&m.Trade{}, &m.Purchase{}, &m.Divergence{}, &m.PowerSample{})
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

func (s *Storage) SaveDivergence(d *m.Divergence) error {
	return s.db.Create(d).Error
}

func (s *Storage) RetrieveDivergences(unresolvedOnly bool) ([]m.Divergence, error) {
	var divergences []m.Divergence

	q := s.db.Model(&m.Divergence{}).Order("created_at desc")
	if unresolvedOnly {
		q = q.Where("resolved = ?", false)
	}
	if result := q.Find(&divergences); result.Error != nil {
		return nil, result.Error
	}
	return divergences, nil
}

func (s *Storage) ResolveDivergence(id uint) error {
	return s.db.Model(&m.Divergence{}).Where("id = ?", id).Update("resolved", true).Error
}

// CacheTrades replaces the cached trade list with the backend's response.
func (s *Storage) CacheTrades(trades []m.Trade) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&m.Trade{}).Error; err != nil {
			return err
		}
		if len(trades) == 0 {
			return nil
		}
		return tx.Create(&trades).Error
	})
}

func (s *Storage) RetrieveTrades() ([]m.Trade, error) {
	var trades []m.Trade
	if result := s.db.Order("date desc").Find(&trades); result.Error != nil {
		return nil, result.Error
	}
	return trades, nil
}

// CachePurchases replaces the cached purchase list.
func (s *Storage) CachePurchases(purchases []m.Purchase) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&m.Purchase{}).Error; err != nil {
			return err
		}
		if len(purchases) == 0 {
			return nil
		}
		return tx.Create(&purchases).Error
	})
}

func (s *Storage) RetrievePurchases() ([]m.Purchase, error) {
	var purchases []m.Purchase
	if result := s.db.Order("date desc").Find(&purchases); result.Error != nil {
		return nil, result.Error
	}
	return purchases, nil
}

func (s *Storage) SavePowerSample(sample *m.PowerSample) error {
	return s.db.Create(sample).Error
}

func (s *Storage) RetrieveRecentPower(n int) ([]m.PowerSample, error) {
	var samples []m.PowerSample
	if result := s.db.Order("at desc").Limit(n).Find(&samples); result.Error != nil {
		return nil, result.Error
	}
	return samples, nil
}
