package binning

// 以下是贷款违约数据集的内置粗分类方案。边界是业务给定的常量，不由数据推导。

// DelinqGapNote 说明 delinq_2yrs 方案中已知的空洞。
const DelinqGapNote = "delinq_2yrs:>=4 only matches >= 9; values 4-8 fall into no bin"

// LoanContinuousSchemes 返回连续变量的分箱方案，顺序与输出列顺序一致。
func LoanContinuousSchemes() []Scheme {
	return []Scheme{
		{
			Variable: "emp_length",
			Bins: []Bin{
				IntRange{Name: "0", Start: 0, Stop: 1},
				IntRange{Name: "1", Start: 1, Stop: 2},
				IntRange{Name: "2-4", Start: 2, Stop: 5},
				IntRange{Name: "5-6", Start: 5, Stop: 7},
				IntRange{Name: "7-9", Start: 7, Stop: 10},
				IntRange{Name: "10", Start: 10, Stop: 11},
			},
		},
		{
			Variable: "int_rate",
			Bins: []Bin{
				AtMost("<9.548", 9.548),
				LeftOpen("9.548-12.025", 9.548, 12.025),
				LeftOpen("12.025-15.74", 12.025, 15.74),
				LeftOpen("15.74-20.281", 15.74, 20.281),
				Above(">20.281", 20.281),
			},
		},
		{
			Variable: "mths_since_earliest_cr_line",
			Bins: []Bin{
				IntRange{Name: "<140", Start: 0, Stop: 140},
				IntRange{Name: "141-164", Start: 140, Stop: 165},
				IntRange{Name: "165-247", Start: 165, Stop: 248},
				IntRange{Name: "248-270", Start: 248, Stop: 271},
				IntRange{Name: "271-352", Start: 271, Stop: 353},
				IntRange{Name: ">352", Start: 353, ToMax: true},
			},
		},
		{
			Variable: "delinq_2yrs",
			Bins: []Bin{
				Equal("0", 0),
				Closed("1-3", 1, 3),
				AtLeast(">=4", 9),
			},
			Note: DelinqGapNote,
		},
		{
			Variable: "inq_last_6mths",
			Bins: []Bin{
				Equal("0", 0),
				Closed("1-2", 1, 2),
				Closed("3-6", 3, 6),
				Above(">6", 6),
			},
		},
		{
			Variable: "open_acc",
			Bins: []Bin{
				Equal("0", 0),
				Closed("1-3", 1, 3),
				Closed("4-12", 4, 12),
				Closed("13-17", 13, 17),
				Closed("18-22", 18, 22),
				Closed("23-25", 23, 25),
				Closed("26-30", 26, 30),
				AtLeast(">=31", 31),
			},
		},
		{
			Variable: "pub_rec",
			Bins: []Bin{
				Closed("0-2", 0, 2),
				Closed("3-4", 3, 4),
				AtLeast(">=5", 5),
			},
		},
		{
			Variable: "total_acc",
			Bins: []Bin{
				AtMost("<=27", 27),
				Closed("28-51", 28, 51),
				AtLeast(">=52", 52),
			},
		},
		{
			Variable: "annual_inc",
			Bins: []Bin{
				AtMost("<20K", 20000),
				LeftOpen("20K-30K", 20000, 30000),
				LeftOpen("30K-40K", 30000, 40000),
				LeftOpen("40K-50K", 40000, 50000),
				LeftOpen("50K-60K", 50000, 60000),
				LeftOpen("60K-70K", 60000, 70000),
				LeftOpen("70K-80K", 70000, 80000),
				LeftOpen("80K-90K", 80000, 90000),
				LeftOpen("90K-100K", 90000, 100000),
				LeftOpen("100K-120K", 100000, 120000),
				LeftOpen("120K-140K", 120000, 140000),
				Above(">140K", 140000),
			},
		},
		{
			Variable: "mths_since_last_delinq",
			Bins: []Bin{
				Missing{},
				Closed("0-3", 0, 3),
				Closed("4-30", 4, 30),
				Closed("31-56", 31, 56),
				AtLeast(">=57", 57),
			},
		},
		{
			Variable: "dti",
			Bins: []Bin{
				AtMost("<=1.4", 1.4),
				LeftOpen("1.4-3.5", 1.4, 3.5),
				LeftOpen("3.5-7.7", 3.5, 7.7),
				LeftOpen("7.7-10.5", 7.7, 10.5),
				LeftOpen("10.5-16.1", 10.5, 16.1),
				LeftOpen("16.1-20.3", 16.1, 20.3),
				LeftOpen("20.3-21.7", 20.3, 21.7),
				LeftOpen("21.7-22.4", 21.7, 22.4),
				LeftOpen("22.4-35", 22.4, 35),
				Above(">35", 35),
			},
		},
		{
			Variable: "mths_since_last_record",
			Bins: []Bin{
				Missing{},
				Closed("0-2", 0, 2),
				Closed("3-20", 3, 20),
				Closed("21-31", 21, 31),
				Closed("32-80", 32, 80),
				Closed("81-86", 81, 86),
				Above(">86", 86),
			},
		},
	}
}

// LoanDiscreteSpecs 返回离散变量的粗分类分组。
func LoanDiscreteSpecs() []MergeSpec {
	return []MergeSpec{
		{
			Variable: "addr_state",
			Groups: []Group{
				{Members: []string{"IA", "MS"}},
				{Members: []string{"AR", "AL", "NV", "NE", "OK"}},
				{Members: []string{"FL", "TN"}},
				{Members: []string{"NY", "NM"}},
				{Members: []string{"HI", "MD", "IN", "NJ", "KY", "NC", "PA"}},
				{Members: []string{"CA", "MI", "AZ", "VA"}},
				{Members: []string{"DE", "MN", "AK"}},
				{Members: []string{"MA", "UT", "RI", "ND", "ID", "GA"}},
				{Members: []string{"IL", "WI"}},
				{Members: []string{"WA", "CT"}},
				{Members: []string{"SC", "WV", "CO", "WY", "KS"}},
			},
		},
		{
			Variable: "home_ownership",
			Groups: []Group{
				{Members: []string{"OTHER", "RENT"}},
				{Members: []string{"NONE", "ANY", "OWN"}},
			},
		},
		{
			Variable: "sub_grade",
			Groups: []Group{
				{Members: []string{"G5", "G3", "G1", "G2", "F5", "G4"}},
			},
		},
		{
			Variable: "purpose",
			DummySep: ":",
			Groups: []Group{
				{Label: "ed_re_mo_ho", Members: []string{"educational", "renewable_energy", "moving", "house"}},
				{Label: "mp_hi", Members: []string{"major_purchase", "home_improvement"}},
				{Label: "wedding_car", Members: []string{"wedding", "car"}},
			},
		},
	}
}

// LoanScheme 按变量名查找内置连续方案。
func LoanScheme(variable string) (Scheme, bool) {
	for _, s := range LoanContinuousSchemes() {
		if s.Variable == variable {
			return s, true
		}
	}
	return Scheme{}, false
}

// LoanSpec 按变量名查找内置离散分组。
func LoanSpec(variable string) (MergeSpec, bool) {
	for _, s := range LoanDiscreteSpecs() {
		if s.Variable == variable {
			return s, true
		}
	}
	return MergeSpec{}, false
}
