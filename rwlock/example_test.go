package rwlock_test

import (
	"fmt"

	"github.com/kolkov/synckit/rwlock"
)

// Example shows concurrent readers sharing the lock.
func Example() {
	l := rwlock.New(map[string]int{"a": 1})

	w := l.Write()
	(*w.Value())["b"] = 2
	w.Unlock()

	r1 := l.Read()
	r2 := l.Read()
	fmt.Println(len(*r1.Value()), (*r2.Value())["b"])
	r1.Unlock()
	r2.Unlock()

	// Output:
	// 2 2
}
