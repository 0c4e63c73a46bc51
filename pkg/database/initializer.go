package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// Initializer 数据库初始化器
// 分区表由嵌入的 SQL 定义建表，普通表走 AutoMigrate
type Initializer struct {
	db             *gorm.DB
	config         *PartitionConfig
	manager        *PartitionManager
	nonPartitioned []interface{}
	futureMonths   int
}

// NewInitializer 创建初始化器
// models: 需要 AutoMigrate 的非分区表
func NewInitializer(db *gorm.DB, models []interface{}, futureMonths int) (*Initializer, error) {
	config, err := LoadPartitionConfig(PartitionSQL, "partitions")
	if err != nil {
		return nil, fmt.Errorf("加载分区配置失败: %w", err)
	}

	if futureMonths == 0 {
		futureMonths = 3
	}

	return &Initializer{
		db:             db,
		config:         config,
		manager:        NewPartitionManager(db, config),
		nonPartitioned: models,
		futureMonths:   futureMonths,
	}, nil
}

// Initialize 执行初始化
func (i *Initializer) Initialize(ctx context.Context) error {
	log.Println("[DB] 开始数据库初始化...")
	start := time.Now()

	// 1. 创建分区主表
	log.Println("[DB] 1/3 创建分区主表...")
	if err := i.manager.InitPartitionTables(ctx); err != nil {
		return fmt.Errorf("创建分区表失败: %w", err)
	}

	// 2. 创建分区
	log.Printf("[DB] 2/3 创建未来 %d 个月分区...", i.futureMonths)
	if err := i.manager.EnsureFuturePartitions(ctx, i.futureMonths); err != nil {
		return fmt.Errorf("创建分区失败: %w", err)
	}

	// 3. AutoMigrate 非分区表
	if len(i.nonPartitioned) > 0 {
		log.Printf("[DB] 3/3 AutoMigrate %d 个非分区表...", len(i.nonPartitioned))
		if err := i.db.WithContext(ctx).AutoMigrate(i.nonPartitioned...); err != nil {
			return fmt.Errorf("AutoMigrate 失败: %w", err)
		}
	}

	// 打印统计
	i.printStats(ctx)

	log.Printf("[DB] 初始化完成，耗时 %v", time.Since(start))
	return nil
}

func (i *Initializer) printStats(ctx context.Context) {
	stats, err := i.manager.GetAllStats(ctx)
	if err != nil {
		return
	}
	for _, s := range stats {
		log.Printf("[DB] %s: %d 分区, %.2f MB",
			s.TableName, s.PartitionCount, float64(s.TotalSizeBytes)/1024/1024)
	}
}

// GetManager 获取分区管理器
func (i *Initializer) GetManager() *PartitionManager {
	return i.manager
}

// QuickInit 一步完成建库：分区表 + 普通表
func QuickInit(db *gorm.DB, models []interface{}) (*Initializer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	init, err := NewInitializer(db, models, 3)
	if err != nil {
		return nil, err
	}
	return init, init.Initialize(ctx)
}
