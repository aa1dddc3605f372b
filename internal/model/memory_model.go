package model

import (
	"time"

	"gorm.io/datatypes"
)

type SharedMemory struct {
	SessionId string         `gorm:"type:varchar(64);primaryKey"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null;default:now()"`
}

func (SharedMemory) TableName() string {
	return "shared_memory"
}

type AgentLog struct {
	Id        string    `gorm:"type:varchar(64);primaryKey"`
	AgentName string    `gorm:"type:varchar(100);not null;index"`
	Action    string    `gorm:"type:varchar(100);not null"`
	Details   string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"not null;default:now();index"`
}

func (AgentLog) TableName() string {
	return "agent_logs"
}
