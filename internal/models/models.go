package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleStaff = "staff"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Surname      string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:user"` // user — посетитель, staff — сотрудник
}

type Business struct {
	gorm.Model
	Name    string `gorm:"not null"` // Название заведения (клиника, ресторан, отделение банка)
	Address string
}

type Queue struct {
	gorm.Model
	BusinessID      uint      `gorm:"index;not null"` // Заведение-владелец (для движка — просто метка)
	Business        Business  `gorm:"foreignKey:BusinessID"`
	Name            string    `gorm:"not null"`      // Название очереди, например "Терапевт, каб. 104"
	OpensAt         time.Time `gorm:"index"`         // Время автоматического открытия очереди
	ClosesAt        time.Time `gorm:"index"`         // Время автоматического закрытия очереди
	IsActive        bool      `gorm:"default:false"` // Флаг активности очереди
	MaxParticipants int       // Опциональный лимит одновременных участников (0 — без лимита)
}

type QueueEntry struct {
	gorm.Model
	EntryID         string `gorm:"uniqueIndex;not null"` // Публичный идентификатор записи (uuid)
	QueueID         uint   `gorm:"index;not null"`
	UserID          *uint  `gorm:"index"` // nil — гость, добавленный сотрудником без аккаунта
	User            *User  `gorm:"foreignKey:UserID"`
	GuestName       string // Имя гостя для walk-in записей без аккаунта
	Position        int    `gorm:"index;not null"` // Текущая позиция в очереди
	Status          string `gorm:"index;not null"` // waiting / serving / served / missed / cancelled
	WalkIn          bool   `gorm:"default:false"`  // Запись создана сотрудником на месте
	StatusChangedAt time.Time
	ServedAt        *time.Time // Время завершения обслуживания
	ServedBy        *uint      // Сотрудник, обслуживший запись
	LeftAt          *time.Time // Время выхода из очереди, если участник вышел сам (nil — запись не покидала очередь)
}
