package models

// Patient wraps a User account one-to-one and owns all health records.
type Patient struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`
}

// FullName joins the account's first and last names. Requires User to be
// preloaded.
func (p *Patient) FullName() string {
	return p.User.FirstName + " " + p.User.LastName
}
