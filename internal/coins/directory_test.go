package coins

import "testing"

func TestResolveCaseInsensitive(t *testing.T) {
	d := NewDirectory()

	for _, tok := range []string{"BTC", "btc", "Btc", "BITCOIN", "bitcoin"} {
		coin := d.Resolve(tok)
		if coin == nil {
			t.Fatalf("Resolve(%q) = nil, want bitcoin", tok)
		}
		if coin.ID != "bitcoin" {
			t.Errorf("Resolve(%q).ID = %q, want bitcoin", tok, coin.ID)
		}
	}
}

func TestResolveAllSymbols(t *testing.T) {
	d := NewDirectory()

	cases := map[string]string{
		"btc":  "bitcoin",
		"eth":  "ethereum",
		"ltc":  "litecoin",
		"ada":  "cardano",
		"dot":  "polkadot",
		"link": "chainlink",
		"xrp":  "ripple",
		"sol":  "solana",
		"doge": "dogecoin",
		"shib": "shiba-inu",
	}
	for tok, want := range cases {
		coin := d.Resolve(tok)
		if coin == nil || coin.ID != want {
			t.Errorf("Resolve(%q) = %+v, want id %q", tok, coin, want)
		}
	}
}

func TestResolveInsideSentence(t *testing.T) {
	d := NewDirectory()

	coin := d.Resolve("What's the price of Ethereum today?")
	if coin == nil || coin.ID != "ethereum" {
		t.Errorf("Resolve(sentence) = %+v, want ethereum", coin)
	}
}

func TestResolveNoMatch(t *testing.T) {
	d := NewDirectory()

	if coin := d.Resolve("show me the weather"); coin != nil {
		t.Errorf("Resolve(weather) = %+v, want nil", coin)
	}
	if coin := d.Resolve(""); coin != nil {
		t.Errorf("Resolve(empty) = %+v, want nil", coin)
	}
}

// Substring containment is a known limitation: short tickers match inside
// unrelated words. The result must at least stay deterministic, first table
// entry wins.
func TestResolveSubstringFalsePositive(t *testing.T) {
	d := NewDirectory()

	coin := d.Resolve("anecdote about nothing")
	if coin == nil || coin.ID != "polkadot" {
		t.Errorf(`Resolve("anecdote...") = %+v, want polkadot (documented "dot" false positive)`, coin)
	}

	// "bitcoin" is declared before "polkadot", so mixed mentions resolve
	// to the earlier table entry.
	coin = d.Resolve("polkadot vs bitcoin")
	if coin == nil || coin.ID != "bitcoin" {
		t.Errorf("Resolve(mixed mention) = %+v, want bitcoin (table order wins)", coin)
	}
}

func TestByIDAndCoins(t *testing.T) {
	d := NewDirectory()

	if coin := d.ByID("solana"); coin == nil || coin.Symbol != "SOL" {
		t.Errorf("ByID(solana) = %+v, want SOL", coin)
	}
	if coin := d.ByID("nope"); coin != nil {
		t.Errorf("ByID(nope) = %+v, want nil", coin)
	}

	all := d.Coins()
	if len(all) != 10 {
		t.Fatalf("Coins() len = %d, want 10", len(all))
	}
	if all[0].ID != "bitcoin" || all[9].ID != "shiba-inu" {
		t.Errorf("Coins() order = %q ... %q, want bitcoin ... shiba-inu", all[0].ID, all[9].ID)
	}
}
