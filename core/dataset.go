package core

import (
	"fmt"
	"math"
	"time"
)

// ColumnType 是列的语义类型，决定分箱/编码时如何解释单元格。
type ColumnType int

const (
	TypeCategorical ColumnType = iota // 有限取值集合，单元格为 string
	TypeContinuous                    // 实数，单元格为 float64
	TypeBinary                        // 0/1 目标变量，单元格为 float64
	TypeDate                          // 日期，单元格为 time.Time
	TypeIndicator                     // 分箱/哑变量产生的 0/1 指示列
)

func (t ColumnType) String() string {
	switch t {
	case TypeCategorical:
		return "categorical"
	case TypeContinuous:
		return "continuous"
	case TypeBinary:
		return "binary"
	case TypeDate:
		return "date"
	case TypeIndicator:
		return "indicator"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column 是只读的列。创建后不再修改，因此多个 Dataset 可以安全地共享同一列。
//
// 单元格约定：nil 表示缺失；连续/二元/指示列为 float64（NaN 视为缺失）；
// 类别列为 string；日期列为 time.Time。
type Column struct {
	name   string
	typ    ColumnType
	values []any
}

// NewColumn 创建列，values 会被复制。
func NewColumn(name string, typ ColumnType, values []any) *Column {
	cp := make([]any, len(values))
	copy(cp, values)
	return &Column{name: name, typ: typ, values: cp}
}

// NewFloatColumn 从 []float64 创建列，NaN 记为缺失。
func NewFloatColumn(name string, typ ColumnType, values []float64) *Column {
	cells := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		cells[i] = v
	}
	return &Column{name: name, typ: typ, values: cells}
}

// NewStringColumn 从 []string 创建类别列，空串记为缺失。
func NewStringColumn(name string, values []string) *Column {
	cells := make([]any, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		cells[i] = v
	}
	return &Column{name: name, typ: TypeCategorical, values: cells}
}

func (c *Column) Name() string     { return c.name }
func (c *Column) Type() ColumnType { return c.typ }
func (c *Column) Len() int         { return len(c.values) }

// Value 返回原始单元格。
func (c *Column) Value(i int) any { return c.values[i] }

// IsNull 判断单元格是否缺失。
func (c *Column) IsNull(i int) bool {
	switch v := c.values[i].(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(v)
	}
	return false
}

// Float 返回数值单元格，缺失或非数值时 ok 为 false。
func (c *Column) Float(i int) (float64, bool) {
	v, ok := c.values[i].(float64)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// String 返回字符串单元格。
func (c *Column) String(i int) (string, bool) {
	v, ok := c.values[i].(string)
	return v, ok
}

// Time 返回日期单元格。
func (c *Column) Time(i int) (time.Time, bool) {
	v, ok := c.values[i].(time.Time)
	return v, ok
}

// Values 返回单元格副本。
func (c *Column) Values() []any {
	cp := make([]any, len(c.values))
	copy(cp, c.values)
	return cp
}

// Floats 返回所有非缺失的数值。
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.values))
	for i := range c.values {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// NullCount 返回缺失单元格数量。
func (c *Column) NullCount() int {
	n := 0
	for i := range c.values {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// Rename 返回同数据、新名字的列（底层数据共享，列只读所以安全）。
func (c *Column) Rename(name string) *Column {
	return &Column{name: name, typ: c.typ, values: c.values}
}

// Dataset 是有序、具名、等长列的集合（行 = 贷款记录）。
//
// 所有变换（With/Drop/Filter 等）都返回新的 Dataset，原 Dataset 保持不变，
// 未改动的列在新旧 Dataset 之间共享。
type Dataset struct {
	rows    int
	columns []*Column
	index   map[string]int
}

// NewDataset 由列构建数据集。列长度必须一致，列名不得重复。
func NewDataset(columns ...*Column) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(columns))}
	if len(columns) > 0 {
		d.rows = columns[0].Len()
	}
	for _, c := range columns {
		if err := d.appendColumn(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dataset) appendColumn(c *Column) error {
	if c == nil {
		return ErrInvalidInput(ModuleDataset, "nil column")
	}
	if _, ok := d.index[c.name]; ok {
		return NewDomainError(ModuleDataset, ErrorCodeColumnExists, fmt.Sprintf("dataset: column %q already exists", c.name))
	}
	if len(d.columns) == 0 && d.rows == 0 {
		d.rows = c.Len()
	}
	if c.Len() != d.rows {
		return ErrInvalidInput(ModuleDataset, "column %q has %d rows, want %d", c.name, c.Len(), d.rows)
	}
	d.index[c.name] = len(d.columns)
	d.columns = append(d.columns, c)
	return nil
}

func (d *Dataset) clone() *Dataset {
	cp := &Dataset{
		rows:    d.rows,
		columns: make([]*Column, len(d.columns)),
		index:   make(map[string]int, len(d.index)),
	}
	copy(cp.columns, d.columns)
	for k, v := range d.index {
		cp.index[k] = v
	}
	return cp
}

// Len 返回行数。
func (d *Dataset) Len() int { return d.rows }

// Width 返回列数。
func (d *Dataset) Width() int { return len(d.columns) }

// Names 按顺序返回列名。
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.name
	}
	return names
}

// Columns 按顺序返回列。
func (d *Dataset) Columns() []*Column {
	cp := make([]*Column, len(d.columns))
	copy(cp, d.columns)
	return cp
}

// HasColumn 判断列是否存在。
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column 按名字取列，列缺失时返回 COLUMN_NOT_FOUND。
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, ErrColumnNotFound(name)
	}
	return d.columns[i], nil
}

// With 返回追加了新列的数据集。
func (d *Dataset) With(columns ...*Column) (*Dataset, error) {
	cp := d.clone()
	for _, c := range columns {
		if err := cp.appendColumn(c); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// Replace 返回替换同名列后的数据集；同名列不存在时追加到末尾。
func (d *Dataset) Replace(c *Column) (*Dataset, error) {
	i, ok := d.index[c.name]
	if !ok {
		return d.With(c)
	}
	if c.Len() != d.rows {
		return nil, ErrInvalidInput(ModuleDataset, "column %q has %d rows, want %d", c.name, c.Len(), d.rows)
	}
	cp := d.clone()
	cp.columns[i] = c
	return cp, nil
}

// Drop 返回删除指定列后的数据集。任一列不存在都会返回 COLUMN_NOT_FOUND。
func (d *Dataset) Drop(names ...string) (*Dataset, error) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !d.HasColumn(n) {
			return nil, ErrColumnNotFound(n)
		}
		drop[n] = struct{}{}
	}
	out := &Dataset{rows: d.rows, index: make(map[string]int, len(d.columns))}
	for _, c := range d.columns {
		if _, ok := drop[c.name]; ok {
			continue
		}
		out.index[c.name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out, nil
}

// Filter 返回 keep(row) 为 true 的行组成的数据集，行的相对顺序不变。
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	rows := make([]int, 0, d.rows)
	for i := 0; i < d.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	out := &Dataset{rows: len(rows), index: make(map[string]int, len(d.columns))}
	for _, c := range d.columns {
		values := make([]any, len(rows))
		for j, r := range rows {
			values[j] = c.values[r]
		}
		out.index[c.name] = len(out.columns)
		out.columns = append(out.columns, &Column{name: c.name, typ: c.typ, values: values})
	}
	return out
}

// Row 以 map 形式返回一行，便于调试与表达式求值。
func (d *Dataset) Row(i int) map[string]any {
	row := make(map[string]any, len(d.columns))
	for _, c := range d.columns {
		row[c.name] = c.values[i]
	}
	return row
}
