package core

// WoEConfig 提供 WoE 编码的默认值，编码器字段为零值时使用。
type WoEConfig interface {
	// DefaultSuffix 返回 WoE 输出列的后缀
	DefaultSuffix() string

	// DefaultSmoothing 返回退化类别（好或坏样本为 0）的加性平滑系数
	DefaultSmoothing() float64

	// DefaultUnseen 返回拟合时未见过的类别（及缺失值）的 WoE
	DefaultUnseen() float64

	// DefaultMaxConcurrent 返回并发拟合的变量数上限
	DefaultMaxConcurrent() int
}

// DefaultWoEConfig 是默认的 WoE 配置实现。
type DefaultWoEConfig struct{}

func (c *DefaultWoEConfig) DefaultSuffix() string {
	return "_woe"
}

func (c *DefaultWoEConfig) DefaultSmoothing() float64 {
	return 0.5
}

// DefaultUnseen 为 0，即“不提供信息”。
func (c *DefaultWoEConfig) DefaultUnseen() float64 {
	return 0
}

func (c *DefaultWoEConfig) DefaultMaxConcurrent() int {
	return 4
}
