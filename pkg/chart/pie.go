package chart

// Pie holds the data of a pie chart. A negative Radius lets the renderer
// size the pie to the chart.
type Pie struct {
	Data   []float64 `json:"data,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	ThreeD bool      `json:"three_d,omitempty"`
	X      int       `json:"x,omitempty"`
	Y      int       `json:"y,omitempty"`
	Radius int       `json:"radius"`
}

// SetPieData replaces the sectors.
func (c *Chart) SetPieData(data []float64, labels []string) error {
	if err := c.Require(KindPie); err != nil {
		return err
	}
	c.Pie.Data = append([]float64(nil), data...)
	c.Pie.Labels = append([]string(nil), labels...)
	return nil
}

// SetPie3D draws the pie in 3D.
func (c *Chart) SetPie3D() error {
	if err := c.Require(KindPie); err != nil {
		return err
	}
	c.Pie.ThreeD = true
	return nil
}

// SetPieSize places the pie center and radius.
func (c *Chart) SetPieSize(x, y, r int) error {
	if err := c.Require(KindPie); err != nil {
		return err
	}
	c.Pie.X, c.Pie.Y, c.Pie.Radius = x, y, r
	return nil
}
