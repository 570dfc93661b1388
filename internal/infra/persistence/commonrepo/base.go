package commonrepo

import "time"

// Model 公共字段。业务表的 ID 由 idgen 预先生成
type Model struct {
	ID        uint64    `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index;autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
