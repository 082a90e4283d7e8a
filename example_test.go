package phrasego_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/phrasego"
	"github.com/hupe1980/phrasego/feature"
	"github.com/hupe1980/phrasego/model"
	"github.com/hupe1980/phrasego/phrasetable"
)

func Example() {
	table, err := phrasetable.Parse(strings.NewReader(`das ||| the ||| 0.6
das ||| this ||| 0.4
ist ||| is ||| 1
ein ||| a ||| 1
haus ||| house ||| 0.8
haus ||| home ||| 0.2
`))
	if err != nil {
		panic(err)
	}
	scorer := feature.NewScorer(nil, feature.Weights{Phrase: 1, Distortion: 1})

	d, err := phrasego.New(table, scorer, phrasego.WithNBest(3, true))
	if err != nil {
		panic(err)
	}
	defer d.Close()

	r, err := d.Translate(context.Background(), model.ParseSentence(0, "das ist ein haus"))
	if err != nil {
		panic(err)
	}
	fmt.Println(r.Text)
	for _, t := range r.NBest {
		fmt.Printf("%.3f %s\n", t.Score, t.Text)
	}
	// Output:
	// the is a house
	// -0.734 the is a house
	// -1.139 this is a house
	// -2.120 the is a home
}
