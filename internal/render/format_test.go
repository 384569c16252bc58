package render

import (
	"testing"
	"time"
)

func present(v string) Field { return Field{Value: v, Present: true} }

func TestFormatCO2(t *testing.T) {
	cases := []struct {
		in   Field
		want string
	}{
		{present("812"), "812 ppm"},
		{present("7"), "7 ppm"},
		{present("0"), "0 ppm"},
		{present(" 1234\n"), "1234 ppm"},
		{present("812.0"), UnknownCO2},
		{present("abc"), UnknownCO2},
		{present(""), UnknownCO2},
		{Field{}, UnknownCO2},
	}
	for _, c := range cases {
		if got := FormatCO2(c.in); got != c.want {
			t.Errorf("FormatCO2(%+v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatTemperature(t *testing.T) {
	cases := []struct {
		in   Field
		want string
	}{
		{present("23.5"), "23.5 ℃"},
		{present("23.44"), "23.4 ℃"},
		{present("23.46"), "23.5 ℃"},
		{present("25.001800537109375"), "25.0 ℃"},
		{present("-3"), "-3.0 ℃"},
		{present("0"), "0.0 ℃"},
		{present("NaN"), UnknownTemperature},
		{present("+Inf"), UnknownTemperature},
		{present("warm"), UnknownTemperature},
		{Field{}, UnknownTemperature},
	}
	for _, c := range cases {
		if got := FormatTemperature(c.in); got != c.want {
			t.Errorf("FormatTemperature(%+v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatHumidity(t *testing.T) {
	cases := []struct {
		in   Field
		want string
	}{
		{present("41"), "41.0 ％"},
		{present("37.0010"), "37.0 ％"},
		{present("99.96"), "100.0 ％"},
		{present("humid"), UnknownHumidity},
		{Field{Value: "41", Present: false}, UnknownHumidity},
	}
	for _, c := range cases {
		if got := FormatHumidity(c.in); got != c.want {
			t.Errorf("FormatHumidity(%+v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 59, 0, time.Local)
	if got := FormatTimestamp(ts); got != "2024年03月09日 07:05" {
		t.Fatalf("got %q", got)
	}
}

func TestRowsOrder(t *testing.T) {
	rows := Rows(Snapshot{CO2: present("600")}, time.Date(2024, 1, 2, 3, 4, 0, 0, time.Local))
	want := []Row{
		{Label: "CO2", Value: "600 ppm"},
		{Label: "気温", Value: UnknownTemperature},
		{Label: "湿度", Value: UnknownHumidity},
		{Label: "更新", Value: "2024年01月02日 03:04", Small: true},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows", len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}
