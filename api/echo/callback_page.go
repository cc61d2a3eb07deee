package echo

// callbackPage is the static confirmation page served to the popup window
// after the provider redirect, whatever happened internally. The opener
// polls token.json for the actual outcome.
const callbackPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Login</title>
</head>
<body>
<p>Authentication finished, you can close this window.</p>
<script>
if (window.opener) {
  window.opener.postMessage('passport:callback', '*')
}
window.close()
</script>
</body>
</html>
`
