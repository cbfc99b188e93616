package oneshot_test

import (
	"fmt"

	"github.com/kolkov/synckit/oneshot"
)

// Example hands one value to the goroutine that created the channel.
func Example() {
	tx, rx := oneshot.New[string]()
	defer rx.Close()

	go tx.Send("hello")

	fmt.Println(rx.Receive())

	// Output:
	// hello
}
