package mock

import "github.com/jonwraymond/h5core/entity"

// describeAttr infers the shape and type of an attribute from its Go value.
func describeAttr(name string, v any) entity.Attribute {
	a := entity.Attribute{Name: name, Shape: entity.ScalarShape()}
	switch val := v.(type) {
	case string:
		a.Type = entity.StrType("UTF-8", 0)
	case bool:
		a.Type = entity.BoolType()
	case int, int64:
		a.Type = entity.IntType(64, entity.LittleEndian)
	case int32:
		a.Type = entity.IntType(32, entity.LittleEndian)
	case float32:
		a.Type = entity.FloatType(32, entity.LittleEndian)
	case float64:
		a.Type = entity.FloatType(64, entity.LittleEndian)
	case []string:
		a.Shape = entity.Shape{len(val)}
		a.Type = entity.StrType("UTF-8", 0)
	case []float64:
		a.Shape = entity.Shape{len(val)}
		a.Type = entity.FloatType(64, entity.LittleEndian)
	case []int:
		a.Shape = entity.Shape{len(val)}
		a.Type = entity.IntType(64, entity.LittleEndian)
	case nil:
		a.Shape = nil
		a.Type = entity.UnknownType()
	default:
		a.Type = entity.UnknownType()
	}
	return a
}
