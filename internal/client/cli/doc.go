// Package cli provides the interactive clickpass command-line client.
//
// The CLI stands in for a graphical front end: the reference image is viewed
// elsewhere ("image" saves a copy in the state directory) and clicks are typed as
// "x,y" pairs in the coordinate space of the rendered image. Every point is
// mapped into intrinsic image space before it is recorded.
//
// Commands: register, login, logout, passwd, whoami, status, image, help, exit.
//
// While capturing clicks the following inputs are accepted:
//
//	x,y       record a click (display coordinates)
//	undo <n>  remove click n (registration and new pattern only)
//	clear     drop every click of this step
//	done      finish the step
//	back      go back one step
//	cancel    abandon the flow
//
// When stdin is a terminal, click input is not echoed.
package cli
