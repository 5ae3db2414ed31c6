package main

import (
	keyer "github.com/doismellburning/cwkeyer/src"
)

/*-------------------------------------------------------------------
 *
 * Name:	main
 *
 * Purpose:	List USB audio adapters usable for PTT, or toggle a pin.
 *
 *------------------------------------------------------------------*/

func main() {
	keyer.CM108Main()
}
