package main

import (
	keyer "github.com/doismellburning/cwkeyer/src"
)

func main() {
	keyer.CWKeyerMain()
}
