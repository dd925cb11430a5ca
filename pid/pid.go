// Package pid implements a proportional-integral-derivative controller.
//
// Feed the current error to Update on every control step and apply Output, or
// the individual terms, to the actuator.
package pid

// integralDecay leaks the integral term so it cannot wind up forever.
const integralDecay = 0.9999

type Controller struct {
	pTerm, iTerm, dTerm float64
	oldError            float64

	pGain, iGain, dGain float64
}

func New(pGain, iGain, dGain float64) *Controller {
	return &Controller{
		pGain: pGain,
		iGain: iGain,
		dGain: dGain,
	}
}

func (c *Controller) Update(err float64) {
	c.pTerm = err * c.pGain
	c.iTerm = (c.iTerm + err*c.iGain) * integralDecay
	c.dTerm = (err - c.oldError) * c.dGain

	c.oldError = err
}

func (c *Controller) P() float64 { return c.pTerm }
func (c *Controller) I() float64 { return c.iTerm }
func (c *Controller) D() float64 { return c.dTerm }

func (c *Controller) SetP(p float64) { c.pTerm = p }
func (c *Controller) SetI(i float64) { c.iTerm = i }
func (c *Controller) SetD(d float64) { c.dTerm = d }

// Output is the sum of the three terms.
func (c *Controller) Output() float64 {
	return c.pTerm + c.iTerm + c.dTerm
}
