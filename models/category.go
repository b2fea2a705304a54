package models

// Category groups products.
// It declares which property objects are expected on its products but holds no values itself.
type Category struct {
	ID              uint             `gorm:"primaryKey"`
	Title           string           `gorm:"size:255;not null"`
	Slug            string           `gorm:"size:255;uniqueIndex;not null"`
	PropertyObjects []PropertyObject `gorm:"many2many:category_property_objects"`
}

func (c *Category) TableName() string {
	return "categories"
}

// PropertyCodes returns the codes of the property objects declared for the category.
func (c *Category) PropertyCodes() []string {
	codes := make([]string, len(c.PropertyObjects))
	for i, po := range c.PropertyObjects {
		codes[i] = po.Code
	}
	return codes
}
