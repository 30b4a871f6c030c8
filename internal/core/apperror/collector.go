package apperror

import "fmt"

// Collector accumulates validation and discrepancy messages so that every
// violation in a submission is reported together.
type Collector struct {
	messages      []string
	validations   int
	discrepancies int
}

// Add records a validation message.
func (c *Collector) Add(message string) {
	c.messages = append(c.messages, message)
	c.validations++
}

// Addf records a formatted validation message.
func (c *Collector) Addf(format string, args ...any) {
	c.Add(fmt.Sprintf(format, args...))
}

// AddDiscrepancy records a computation discrepancy message.
func (c *Collector) AddDiscrepancy(message string) {
	c.messages = append(c.messages, message)
	c.discrepancies++
}

// Merge appends messages carried by err. AppErrors contribute their full
// message list; other errors are recorded by their text.
func (c *Collector) Merge(err error) {
	if err == nil {
		return
	}
	appErr, ok := AsAppError(err)
	if !ok {
		c.Add(err.Error())
		return
	}
	for _, msg := range appErr.Messages() {
		if appErr.Code == CodeDiscrepancy {
			c.AddDiscrepancy(msg)
		} else {
			c.Add(msg)
		}
	}
}

// Empty reports whether nothing was collected.
func (c *Collector) Empty() bool {
	return len(c.messages) == 0
}

// Messages returns the collected messages in insertion order.
func (c *Collector) Messages() []string {
	return c.messages
}

// Err returns nil when nothing was collected. A pure discrepancy list yields a
// COMPUTATION_DISCREPANCY error, any validation message makes it a VALIDATION_ERROR.
func (c *Collector) Err() error {
	if c.Empty() {
		return nil
	}
	if c.validations == 0 {
		return NewDiscrepancy(c.messages)
	}
	return NewValidationList(c.messages)
}
