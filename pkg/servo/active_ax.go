// +build ax

package servo

// Active is the unit table selected at build time.
var Active = AX
