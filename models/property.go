package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrInvalidValueType is returned for a property value type outside the known set.
	ErrInvalidValueType = errors.New("invalid property value type")
	// ErrPropertyValueMismatch is returned when a property value does not populate
	// exactly the column named by its property object's value type.
	ErrPropertyValueMismatch = errors.New("property value does not match its value type")
)

// ValueType is the type of the values a property object accepts.
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeDecimal ValueType = "decimal"
)

// ParseValueType maps a raw value onto a ValueType.
func ParseValueType(s string) (ValueType, error) {
	switch t := ValueType(s); t {
	case ValueTypeString, ValueTypeDecimal:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidValueType, s)
}

// PropertyObject defines the shape of a property: its name, code and value type.
type PropertyObject struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"size:255;not null"`
	Code      string    `gorm:"size:255;uniqueIndex;not null"`
	ValueType ValueType `gorm:"size:10;not null"`
}

func (p *PropertyObject) TableName() string {
	return "property_objects"
}

func (p PropertyObject) String() string {
	return fmt.Sprintf("%s (%s)", p.Title, p.ValueType)
}

// Value is a typed property value. It is either a StringValue or a DecimalValue.
type Value interface {
	Type() ValueType
	String() string
}

type StringValue string

func (StringValue) Type() ValueType  { return ValueTypeString }
func (v StringValue) String() string { return string(v) }

type DecimalValue decimal.Decimal

func (DecimalValue) Type() ValueType  { return ValueTypeDecimal }
func (v DecimalValue) String() string { return decimal.Decimal(v).StringFixed(2) }

// ParseValue parses raw input according to t.
func ParseValue(t ValueType, raw string) (Value, error) {
	switch t {
	case ValueTypeString:
		return StringValue(raw), nil
	case ValueTypeDecimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a decimal", ErrPropertyValueMismatch, raw)
		}
		return DecimalValue(d), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidValueType, t)
}

// PropertyValue is a concrete value of a property object, shared by any number of products.
// Only the column named by the property object's value type is populated.
type PropertyValue struct {
	ID               uint                `gorm:"primaryKey"`
	PropertyObjectID uint                `gorm:"not null;index"`
	PropertyObject   PropertyObject      `gorm:"foreignKey:PropertyObjectID;constraint:OnDelete:RESTRICT"`
	ValueString      *string             `gorm:"size:255"`
	ValueDecimal     decimal.NullDecimal `gorm:"type:decimal(11,2)"`
	Code             string              `gorm:"size:255;not null"`
	Products         []Product           `gorm:"many2many:property_value_products"`
}

func (v *PropertyValue) TableName() string {
	return "property_values"
}

// Value resolves the column named by the property object's value type.
// ok is false when the type is unknown or that column is unset.
func (v *PropertyValue) Value() (val Value, ok bool) {
	switch v.PropertyObject.ValueType {
	case ValueTypeString:
		if v.ValueString == nil {
			return nil, false
		}
		return StringValue(*v.ValueString), true
	case ValueTypeDecimal:
		if !v.ValueDecimal.Valid {
			return nil, false
		}
		return DecimalValue(v.ValueDecimal.Decimal), true
	}
	return nil, false
}

// SetValue stores val in its column and clears the other one.
func (v *PropertyValue) SetValue(val Value) {
	v.ValueString = nil
	v.ValueDecimal = decimal.NullDecimal{}
	switch val := val.(type) {
	case StringValue:
		s := string(val)
		v.ValueString = &s
	case DecimalValue:
		v.ValueDecimal = decimal.NewNullDecimal(decimal.Decimal(val))
	}
}

func (v *PropertyValue) String() string {
	val, ok := v.Value()
	if !ok {
		return ""
	}
	return val.String()
}

// Validate checks that exactly the column of the property object's value type is set.
func (v *PropertyValue) Validate() error {
	hasString := v.ValueString != nil
	hasDecimal := v.ValueDecimal.Valid

	var ok bool
	switch v.PropertyObject.ValueType {
	case ValueTypeString:
		ok = hasString && !hasDecimal
	case ValueTypeDecimal:
		ok = hasDecimal && !hasString
	default:
		return fmt.Errorf("%w: %q", ErrInvalidValueType, v.PropertyObject.ValueType)
	}
	if !ok {
		return fmt.Errorf("%w: property %q expects a %s value", ErrPropertyValueMismatch, v.PropertyObject.Code, v.PropertyObject.ValueType)
	}
	return nil
}

// BeforeSave loads the property object when only its ID is set, then validates the value.
func (v *PropertyValue) BeforeSave(tx *gorm.DB) error {
	if v.PropertyObject.ID == 0 || v.PropertyObject.ID != v.PropertyObjectID {
		var po PropertyObject
		if err := tx.Session(&gorm.Session{NewDB: true}).First(&po, v.PropertyObjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyObjectNotFound
			}
			return err
		}
		v.PropertyObject = po
	}
	return v.Validate()
}
