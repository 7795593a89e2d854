package render

import "strconv"

// Context numbers the sliders rendered into one page so that two instances,
// or the same instance twice, never share element ids. Create one per page
// render; it is not safe for concurrent use.
type Context struct {
	count int
}

// NewContext returns a context for one page.
func NewContext() *Context {
	return &Context{}
}

// Next returns the next unique id for instanceID.
func (c *Context) Next(instanceID uint64) string {
	c.count++

	return strconv.FormatUint(instanceID, 10) + "-" + strconv.Itoa(c.count)
}
