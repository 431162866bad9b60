package rwf

import "strconv"

// DataType is the RWF wire-type tag.
type DataType uint8

const (
	DataTypeUnknown     DataType = 0
	DataTypeInt         DataType = 3
	DataTypeUInt        DataType = 4
	DataTypeFloat       DataType = 5
	DataTypeDouble      DataType = 6
	DataTypeReal        DataType = 8
	DataTypeDate        DataType = 9
	DataTypeTime        DataType = 10
	DataTypeDateTime    DataType = 11
	DataTypeQos         DataType = 12
	DataTypeState       DataType = 13
	DataTypeEnum        DataType = 14
	DataTypeArray       DataType = 15
	DataTypeBuffer      DataType = 16
	DataTypeASCIIString DataType = 17
	DataTypeUTF8String  DataType = 18
	DataTypeRMTESString DataType = 19

	// Set-only types: fixed or compact widths used inside set data.
	DataTypeInt1       DataType = 64
	DataTypeUInt1      DataType = 65
	DataTypeInt2       DataType = 66
	DataTypeUInt2      DataType = 67
	DataTypeInt4       DataType = 68
	DataTypeUInt4      DataType = 69
	DataTypeInt8       DataType = 70
	DataTypeUInt8      DataType = 71
	DataTypeFloat4     DataType = 72
	DataTypeDouble8    DataType = 73
	DataTypeReal4RB    DataType = 74
	DataTypeReal8RB    DataType = 75
	DataTypeDate4      DataType = 76
	DataTypeTime3      DataType = 77
	DataTypeTime5      DataType = 78
	DataTypeDateTime7  DataType = 79
	DataTypeDateTime9  DataType = 80
	DataTypeDateTime11 DataType = 81
	DataTypeDateTime12 DataType = 82
	DataTypeTime7      DataType = 83
	DataTypeTime8      DataType = 84

	DataTypeNoData      DataType = 128
	DataTypeOpaque      DataType = 130
	DataTypeXML         DataType = 131
	DataTypeFieldList   DataType = 132
	DataTypeElementList DataType = 133
	DataTypeANSIPage    DataType = 134
	DataTypeFilterList  DataType = 135
	DataTypeVector      DataType = 136
	DataTypeMap         DataType = 137
	DataTypeSeries      DataType = 138
	DataTypeMsg         DataType = 141
	DataTypeJSON        DataType = 142
)

// containerTypeMin is subtracted from container tags on the wire.
const containerTypeMin = 128

var dataTypeNames = map[DataType]string{
	DataTypeUnknown:     "UNKNOWN",
	DataTypeInt:         "INT",
	DataTypeUInt:        "UINT",
	DataTypeFloat:       "FLOAT",
	DataTypeDouble:      "DOUBLE",
	DataTypeReal:        "REAL",
	DataTypeDate:        "DATE",
	DataTypeTime:        "TIME",
	DataTypeDateTime:    "DATETIME",
	DataTypeQos:         "QOS",
	DataTypeState:       "STATE",
	DataTypeEnum:        "ENUM",
	DataTypeArray:       "ARRAY",
	DataTypeBuffer:      "BUFFER",
	DataTypeASCIIString: "ASCII_STRING",
	DataTypeUTF8String:  "UTF8_STRING",
	DataTypeRMTESString: "RMTES_STRING",
	DataTypeInt1:        "INT_1",
	DataTypeUInt1:       "UINT_1",
	DataTypeInt2:        "INT_2",
	DataTypeUInt2:       "UINT_2",
	DataTypeInt4:        "INT_4",
	DataTypeUInt4:       "UINT_4",
	DataTypeInt8:        "INT_8",
	DataTypeUInt8:       "UINT_8",
	DataTypeFloat4:      "FLOAT_4",
	DataTypeDouble8:     "DOUBLE_8",
	DataTypeReal4RB:     "REAL_4RB",
	DataTypeReal8RB:     "REAL_8RB",
	DataTypeDate4:       "DATE_4",
	DataTypeTime3:       "TIME_3",
	DataTypeTime5:       "TIME_5",
	DataTypeDateTime7:   "DATETIME_7",
	DataTypeDateTime9:   "DATETIME_9",
	DataTypeDateTime11:  "DATETIME_11",
	DataTypeDateTime12:  "DATETIME_12",
	DataTypeTime7:       "TIME_7",
	DataTypeTime8:       "TIME_8",
	DataTypeNoData:      "NO_DATA",
	DataTypeOpaque:      "OPAQUE",
	DataTypeXML:         "XML",
	DataTypeFieldList:   "FIELD_LIST",
	DataTypeElementList: "ELEMENT_LIST",
	DataTypeANSIPage:    "ANSI_PAGE",
	DataTypeFilterList:  "FILTER_LIST",
	DataTypeVector:      "VECTOR",
	DataTypeMap:         "MAP",
	DataTypeSeries:      "SERIES",
	DataTypeMsg:         "MSG",
	DataTypeJSON:        "JSON",
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return "DATATYPE(" + strconv.Itoa(int(d)) + ")"
}

// ParseDataType is the inverse of String.
func ParseDataType(name string) (DataType, bool) {
	for dt, n := range dataTypeNames {
		if n == name {
			return dt, true
		}
	}
	return DataTypeUnknown, false
}

// IsContainer reports whether d is a container tag (NO_DATA included).
func (d DataType) IsContainer() bool { return d >= containerTypeMin }

// IsPrimitive reports whether d is a base primitive tag.
func (d DataType) IsPrimitive() bool {
	return d >= DataTypeInt && d <= DataTypeRMTESString && d != 7
}

// IsSetType reports whether d is one of the set-only fixed/compact types.
func (d DataType) IsSetType() bool {
	return d >= DataTypeInt1 && d <= DataTypeTime8
}

func (d DataType) isBufferLike() bool {
	switch d {
	case DataTypeBuffer, DataTypeASCIIString, DataTypeUTF8String, DataTypeRMTESString:
		return true
	}
	return false
}

// BaseType maps a set-only type to the primitive it decodes as.
func (d DataType) BaseType() DataType {
	switch d {
	case DataTypeInt1, DataTypeInt2, DataTypeInt4, DataTypeInt8:
		return DataTypeInt
	case DataTypeUInt1, DataTypeUInt2, DataTypeUInt4, DataTypeUInt8:
		return DataTypeUInt
	case DataTypeFloat4:
		return DataTypeFloat
	case DataTypeDouble8:
		return DataTypeDouble
	case DataTypeReal4RB, DataTypeReal8RB:
		return DataTypeReal
	case DataTypeDate4:
		return DataTypeDate
	case DataTypeTime3, DataTypeTime5, DataTypeTime7, DataTypeTime8:
		return DataTypeTime
	case DataTypeDateTime7, DataTypeDateTime9, DataTypeDateTime11, DataTypeDateTime12:
		return DataTypeDateTime
	}
	return d
}

func containerToWire(d DataType) uint8 { return uint8(d - containerTypeMin) }

func containerFromWire(b uint8) DataType { return DataType(b) + containerTypeMin }
