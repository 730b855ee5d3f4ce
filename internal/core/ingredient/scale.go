package ingredient

// Scale 依份量比例 to/from 調整數量。沒有數量或份量不合法時原樣回傳。
// 烘焙百分比是比例，不隨份量改變。
func Scale(p Parsed, from, to int) Parsed {
	out := p.Clone()
	if p.Amount == nil || from <= 0 || to <= 0 {
		return out
	}
	scaled := *p.Amount * float64(to) / float64(from)
	out.Amount = &scaled
	return out
}

// Clone 深拷貝，避免呼叫端修改共用的指標欄位
func (p Parsed) Clone() Parsed {
	out := Parsed{Name: p.Name}
	if p.Amount != nil {
		a := *p.Amount
		out.Amount = &a
	}
	if p.Unit != nil {
		u := *p.Unit
		out.Unit = &u
	}
	if p.BakerPercentage != nil {
		b := *p.BakerPercentage
		out.BakerPercentage = &b
	}
	return out
}
