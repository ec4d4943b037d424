package model

// Classroom 教室
type Classroom struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity" validate:"gt=0"`
}

// Fits 检查教室容量是否满足最低要求
func (c *Classroom) Fits(minCapacity int) bool {
	return c.Capacity >= minCapacity
}

// DisplayName 返回显示名称
func (c *Classroom) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
