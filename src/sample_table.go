package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Constant tables for tone synthesis and key click
 *		suppression.
 *
 * Description:	The sine table covers one full cycle in DDS_TABLE_SIZE
 *		entries with an amplitude of +-32767.  Values are
 *		truncated toward zero, the same as a C cast.
 *
 *		The window table is the rising half of a Blackman-Harris
 *		window.  It keeps the CW signal bandwidth narrow when
 *		the tone is switched on and off.
 *
 *---------------------------------------------------------------*/

import "math"

const DDS_TABLE_BITS = 10
const DDS_TABLE_SIZE = 1 << DDS_TABLE_BITS // 1024

// Accumulator is 32 bits wide.  Upper DDS_TABLE_BITS are the table index.
const DDS_PTR_SHIFT = 32 - DDS_TABLE_BITS

const SINE_AMPLITUDE = 32767

const SMOOTH_TABLE_SIZE = 128

var sineTable [DDS_TABLE_SIZE]int16

func init() {
	for j := range sineTable {
		var a = (float64(j) / DDS_TABLE_SIZE) * (2.0 * math.Pi)
		sineTable[j] = int16(math.Sin(a) * SINE_AMPLITUDE)
	}
}

// SineTable returns a copy of the oscillator lookup table.
func SineTable() [DDS_TABLE_SIZE]int16 {
	return sineTable
}

// Rising half of a Blackman-Harris window.
var smoothTable = [SMOOTH_TABLE_SIZE]float32{
	0.0000000000000000, 0.0000686004957883,
	0.0000945542356652, 0.0001383179721175, 0.0002006529396865,
	0.0002826248158738, 0.0003856036471126, 0.0005112637206964,
	0.0006615833583608, 0.0008388446022225, 0.0010456327590236,
	0.0012848357641460, 0.0015596433227128, 0.0018735457812732,
	0.0022303326801620, 0.0026340909336119, 0.0030892025821568,
	0.0036003420597745, 0.0041724729166402, 0.0048108439372987,
	0.0055209845935232, 0.0063086997711494, 0.0071800637107376,
	0.0081414131030473, 0.0091993392820062, 0.0103606794601087,
	0.0116325069539978, 0.0130221203513468, 0.0145370315740592,
	0.0161849527972270, 0.0179737821882093, 0.0199115884355984,
	0.0220065940436903, 0.0242671573743564, 0.0267017534248783,
	0.0293189533373318, 0.0321274026424438, 0.0351357982484650,
	0.0383528641934459, 0.0417873261873527, 0.0454478849786327,
	0.0493431885881256, 0.0534818034615354, 0.0578721846000008,
	0.0625226447365667, 0.0674413226345205, 0.0726361505915551,
	0.0781148212415210, 0.0838847537530600, 0.0899530595316440,
	0.0963265075384118, 0.1030114893456630, 0.1100139840548870,
	0.1173395232087210, 0.1249931558332360, 0.1329794137513460,
	0.1413022773119520, 0.1499651416825930, 0.1589707838558700,
	0.1683213305216760, 0.1780182269583640, 0.1880622070962730,
	0.1984532649066170, 0.2091906272675180, 0.2202727284569900,
	0.2316971864198910, 0.2434607809523230, 0.2555594339426260,
	0.2679881918029900, 0.2807412102198870, 0.2938117413448940,
	0.3071921235401840, 0.3208737737849510, 0.3348471828403530,
	0.3491019132612700, 0.3636266003332790, 0.3784089560027740,
	0.3934357758572420, 0.4086929492012480, 0.4241654722618500,
	0.4398374645449960, 0.4556921883519000, 0.4717120714516800,
	0.4878787328935640, 0.5041730119288920, 0.5205749999999980,
	0.5370640757398780, 0.5536189429134430, 0.5702176712181650,
	0.5868377398491150, 0.6034560837207990, 0.6200491422259460,
	0.6365929103995070, 0.6530629923446170, 0.6694346567663080,
	0.6856828944482830, 0.7017824774982180, 0.7177080201778180,
	0.7334340411253520, 0.7489350267705930, 0.7641854957350820,
	0.7791600640044710, 0.7938335106543350, 0.8081808439064380,
	0.8221773672888840, 0.8357987456709900, 0.8490210709420900,
	0.8618209271027980, 0.8741754545375520, 0.8860624132385800,
	0.8974602447536510, 0.9083481326332570, 0.9187060611570670,
	0.9285148721246550, 0.9377563195016140, 0.9464131217191720,
	0.9544690114333140, 0.9619087825581750, 0.9687183343980040,
	0.9748847127123550, 0.9803961475602210, 0.9852420877805500,
	0.9894132319790110, 0.9929015559037870, 0.9957003361066840,
	0.9978041697997700, 0.9992089908321180, 0.9999120817258750,
}

// SmoothTable returns a copy of the click suppression window.
func SmoothTable() [SMOOTH_TABLE_SIZE]float32 {
	return smoothTable
}
